package blockstore

import (
	"bytes"
	"testing"

	"ark-go/internal/ark"
)

func TestMemoryBlockStore_PutAndGet(t *testing.T) {
	store := NewMemoryBlockStore("test")

	data := []byte("hello blocks")
	ref := ark.BlockRef(data)

	if err := store.Put(ref, data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestMemoryBlockStore_GetMissing(t *testing.T) {
	store := NewMemoryBlockStore("test")
	if _, err := store.Get("deadbeef"); err == nil {
		t.Fatal("Get() expected error for missing ref")
	}
}

func TestMemoryBlockStore_Has(t *testing.T) {
	store := NewMemoryBlockStore("test")
	data := []byte("x")
	ref := ark.BlockRef(data)

	ok, err := store.Has(ref)
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if ok {
		t.Error("Has() = true before Put")
	}

	if err := store.Put(ref, data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	ok, err = store.Has(ref)
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if !ok {
		t.Error("Has() = false after Put")
	}
}

func TestMemoryBlockStore_IdempotentPut(t *testing.T) {
	store := NewMemoryBlockStore("test")
	data := []byte("same content")
	ref := ark.BlockRef(data)

	if err := store.Put(ref, data); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := store.Put(ref, data); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	got, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestMemoryBlockStore_DefensiveCopies(t *testing.T) {
	store := NewMemoryBlockStore("test")
	data := []byte("original")
	ref := ark.BlockRef(data)

	if err := store.Put(ref, data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data[0] = 'X'

	got, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "original" {
		t.Errorf("Get() = %q, caller mutation leaked into the store", got)
	}

	got[0] = 'Y'
	again, _ := store.Get(ref)
	if string(again) != "original" {
		t.Errorf("Get() = %q, returned slice aliases the store", again)
	}
}
