// Package app is the application layer between the CLI and the archive
// engine. It constructs all dependencies from config, exposes high-level
// operations that accept raw locators and local paths, and manages resource
// lifecycles on Close.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ark-go/internal/ark"
	"ark-go/internal/blockstore"
	"ark-go/internal/config"
	"ark-go/internal/encryption"
	"ark-go/internal/fs"
	"ark-go/internal/logstore"
)

// ArkApp wires config into a working archive environment: one block store,
// one archive registry, and as many engines as the caller opens.
// The caller must call Close when done.
type ArkApp struct {
	cfg      *config.Config
	registry logstore.Registry
	blocks   ark.BlockStore
	locked   *blockstore.EncryptedBlockStore // non-nil when encryption is enabled
	fsmgr    ark.FilesystemManager
	logger   ark.Logger
	logFile  *os.File
}

// NewArkApp creates a fully wired ArkApp from the given config.
func NewArkApp(cfg *config.Config) (*ArkApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	registry, err := logstore.NewRegistryFromConfig(cfg.LogStore)
	if err != nil {
		return nil, fmt.Errorf("creating archive registry: %w", err)
	}

	blocks, err := blockstore.NewBlockStoreFromConfig(cfg.BlockStore)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("creating block store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	var locked *blockstore.EncryptedBlockStore
	if enc != nil {
		locked = blockstore.NewEncryptedBlockStore(blocks, enc)
		blocks = locked
	}

	logger, logFile, err := newLogger(cfg.LogDir)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &ArkApp{
		cfg:      cfg,
		registry: registry,
		blocks:   blocks,
		locked:   locked,
		fsmgr:    fsmgr,
		logger:   &slogAdapter{l: logger},
		logFile:  logFile,
	}, nil
}

// Unlock enables reads from an encrypted block store. A no-op when
// encryption is not configured.
func (a *ArkApp) Unlock(passphrase string) error {
	if a.locked == nil {
		return nil
	}
	return a.locked.Unlock(passphrase)
}

// Encrypted reports whether the block store requires a passphrase for reads.
func (a *ArkApp) Encrypted() bool {
	return a.locked != nil
}

// CreateArchive creates a brand-new archive owned by this host and registers
// it locally. Title and description are applied when non-empty.
func (a *ArkApp) CreateArchive(title, description string) (*ark.Engine, error) {
	key, err := ark.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating archive key: %w", err)
	}

	if err := a.registry.CreateArchive(key, true); err != nil {
		return nil, err
	}

	engine, err := ark.Create(ark.Options{
		Key:       key,
		Blocks:    a.blocks,
		Log:       a.registry.ForArchive(key),
		Logger:    a.logger,
		BlockSize: a.cfg.BlockSize,
	})
	if err != nil {
		return nil, err
	}

	if title != "" || description != "" {
		patch := ark.ManifestPatch{}
		if title != "" {
			patch.Title = &title
		}
		if description != "" {
			patch.Description = &description
		}
		if err := engine.Configure(patch); err != nil {
			return nil, fmt.Errorf("applying initial manifest: %w", err)
		}
	}

	return engine, nil
}

// OpenArchive opens a locally registered archive by locator URL or bare key.
func (a *ArkApp) OpenArchive(ref string) (*ark.Engine, error) {
	loc, err := parseRef(ref)
	if err != nil {
		return nil, err
	}

	rec, err := a.registry.GetArchive(loc.Key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: archive %s is not registered on this host", ark.ErrNotFound, loc.Key)
	}

	return ark.Open(ark.Options{
		Key:       rec.Key,
		IsOwner:   rec.IsOwner,
		Blocks:    a.blocks,
		Log:       a.registry.ForArchive(rec.Key),
		Logger:    a.logger,
		BlockSize: a.cfg.BlockSize,
	})
}

// JoinArchive registers a remote archive locally as read-only and opens it.
// Until entries are synced from peers the archive appears empty.
func (a *ArkApp) JoinArchive(ref string) (*ark.Engine, error) {
	loc, err := parseRef(ref)
	if err != nil {
		return nil, err
	}

	if err := a.registry.CreateArchive(loc.Key, false); err != nil {
		return nil, err
	}

	return ark.Open(ark.Options{
		Key:       loc.Key,
		IsOwner:   false,
		Blocks:    a.blocks,
		Log:       a.registry.ForArchive(loc.Key),
		Logger:    a.logger,
		BlockSize: a.cfg.BlockSize,
	})
}

// ListArchives returns every archive registered on this host.
func (a *ArkApp) ListArchives() ([]*logstore.ArchiveRecord, error) {
	return a.registry.ListArchives()
}

// Import copies local files into the archive under destDir. A file imports
// as destDir/<basename>; a directory imports its discovered files with their
// relative layout preserved. Returns the number of files imported.
func (a *ArkApp) Import(engine *ark.Engine, rawPath, destDir string, recursive bool) (int, error) {
	src, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return 0, fmt.Errorf("resolving path: %w", err)
	}

	dest := ark.NormalizePath(destDir)
	if err := a.ensureDirs(engine, dest); err != nil {
		return 0, err
	}

	if !src.IsDir() {
		if err := a.importFile(engine, src, joinArchivePath(dest, filepath.Base(src.String()))); err != nil {
			return 0, err
		}
		return 1, nil
	}

	files, err := a.fsmgr.FindFiles(src, recursive)
	if err != nil {
		return 0, fmt.Errorf("discovering files: %w", err)
	}

	count := 0
	for _, f := range files {
		rel, err := filepath.Rel(src.String(), f.String())
		if err != nil {
			return count, fmt.Errorf("relativizing %s: %w", f.String(), err)
		}
		target := joinArchivePath(dest, filepath.ToSlash(rel))
		if err := a.ensureDirs(engine, ark.ParentPath(target)); err != nil {
			return count, err
		}
		if err := a.importFile(engine, f, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Export copies archive content under srcPath into the local directory
// destDir. Returns the list of written local paths.
func (a *ArkApp) Export(engine *ark.Engine, srcPath, destDir string) ([]string, error) {
	src := ark.NormalizePath(srcPath)
	node, err := engine.Stat(src)
	if err != nil {
		return nil, err
	}

	if node.IsFile() {
		local := filepath.Join(destDir, ark.BaseName(src))
		if err := a.exportFile(engine, src, local); err != nil {
			return nil, err
		}
		return []string{local}, nil
	}

	entries, err := engine.Readdir(src, ark.ListOptions{Recursive: true, WithStat: true})
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range entries {
		if entry.Node == nil || !entry.Node.IsFile() {
			continue
		}
		local := filepath.Join(destDir, filepath.FromSlash(entry.Name))
		if err := a.exportFile(engine, joinArchivePath(src, entry.Name), local); err != nil {
			return written, err
		}
		written = append(written, local)
	}
	return written, nil
}

// Close releases all resources.
func (a *ArkApp) Close() error {
	var firstErr error
	if err := a.registry.Close(); err != nil {
		firstErr = fmt.Errorf("closing archive registry: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

func (a *ArkApp) importFile(engine *ark.Engine, src *ark.LocalPath, target string) error {
	f, err := a.fsmgr.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src.String(), err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src.String(), err)
	}
	return engine.WriteFile(target, data)
}

func (a *ArkApp) exportFile(engine *ark.Engine, src, local string) error {
	data, err := engine.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(local, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", local, err)
	}
	return nil
}

// ensureDirs creates any missing explicit directories down to path.
func (a *ArkApp) ensureDirs(engine *ark.Engine, path string) error {
	p := ark.NormalizePath(path)
	if p == "/" {
		return nil
	}

	// Build ancestor list root-first.
	var chain []string
	for cur := p; cur != "/"; cur = ark.ParentPath(cur) {
		chain = append([]string{cur}, chain...)
	}

	for _, dir := range chain {
		node, err := engine.Stat(dir)
		if err == nil {
			if !node.IsDirectory() {
				return fmt.Errorf("%w: %s is a file", ark.ErrAlreadyExists, dir)
			}
			continue
		}
		if !errors.Is(err, ark.ErrNotFound) {
			return err
		}
		if err := engine.Mkdir(dir); err != nil && !errors.Is(err, ark.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

// parseRef accepts a full ark:// URL or a bare 64-hex key.
func parseRef(ref string) (ark.Locator, error) {
	loc, err := ark.ParseLocator(ref)
	if err == nil {
		return loc, nil
	}
	if errors.Is(err, ark.ErrInvalidScheme) && !strings.Contains(ref, "://") {
		return ark.ParseLocator(ark.Scheme + "://" + ref)
	}
	return ark.Locator{}, err
}

func joinArchivePath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
