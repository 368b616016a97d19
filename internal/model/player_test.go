package model

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestNewPlayer(t *testing.T) {
	tests := []struct {
		name       string
		id         uuid.UUID
		playerName string
		wantErr    bool
	}{
		{
			name:       "valid player",
			id:         uuid.New(),
			playerName: "Alice",
		},
		{
			name:       "name too short",
			id:         uuid.New(),
			playerName: "A",
			wantErr:    true,
		},
		{
			name:       "empty name",
			id:         uuid.New(),
			playerName: "",
			wantErr:    true,
		},
		{
			name:       "nil identity",
			id:         uuid.Nil,
			playerName: "Alice",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlayer(tt.id, tt.playerName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPlayer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if p.ID() != tt.id {
				t.Errorf("ID() = %v, want %v", p.ID(), tt.id)
			}
			if p.Name() != tt.playerName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.playerName)
			}
			if p.Online() {
				t.Error("new player should be offline")
			}
		})
	}
}

func TestPlayer_Permissions(t *testing.T) {
	p, err := NewPlayer(uuid.New(), "Alice")
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	if p.HasPermission("node") {
		t.Error("new player should have no permissions")
	}
	p.Grant("node")
	if !p.HasPermission("node") {
		t.Error("HasPermission after Grant = false")
	}
	p.Revoke("node")
	if p.HasPermission("node") {
		t.Error("HasPermission after Revoke = true")
	}
}

func TestPlayer_Inbox(t *testing.T) {
	p, err := NewPlayer(uuid.New(), "Alice")
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	p.SendMessage("one")
	p.SendMessage("two")

	if got := p.Messages(); len(got) != 2 {
		t.Fatalf("Messages() len = %d, want 2", len(got))
	}
	got := p.DrainMessages()
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("DrainMessages() = %v", got)
	}
	if len(p.Messages()) != 0 {
		t.Error("inbox should be empty after drain")
	}
}

func TestPlayer_ConcurrentMessages(t *testing.T) {
	p, err := NewPlayer(uuid.New(), "Alice")
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.SendMessage("hi")
		}()
	}
	wg.Wait()

	if n := len(p.DrainMessages()); n != 50 {
		t.Errorf("received %d messages, want 50", n)
	}
}
