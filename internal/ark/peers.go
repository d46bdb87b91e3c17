package ark

// PeerSource reports how many peers are connected for an archive key.
// Peer discovery and replication live outside the engine; this is the only
// fact the engine needs from them.
type PeerSource interface {
	PeerCount(key string) int
}

// StaticPeerSource always reports a fixed peer count.
type StaticPeerSource int

func (s StaticPeerSource) PeerCount(string) int { return int(s) }
