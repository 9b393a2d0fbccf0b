package epg

import (
	"os"
	"strings"
	"testing"
)

func TestParseStream(t *testing.T) {
	data, err := os.ReadFile("testdata/guide.xml")
	if err != nil {
		t.Fatalf("Failed to read test file: %v", err)
	}

	tv, err := ParseStream(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ParseStream failed: %v", err)
	}

	if len(tv.Channels) != 2 {
		t.Errorf("Expected 2 channels, got %d", len(tv.Channels))
	}

	if len(tv.Channels) > 0 {
		ch := tv.Channels[0]
		if ch.ID != "ts114" {
			t.Errorf("Expected channel ID 'ts114', got '%s'", ch.ID)
		}
		if ch.DisplayName != "Sports One HD" {
			t.Errorf("Expected display name 'Sports One HD', got '%s'", ch.DisplayName)
		}
		if ch.Icon == nil || ch.Icon.Src != "https://img.example.com/ts114.png" {
			t.Errorf("Expected icon src 'https://img.example.com/ts114.png', got %+v", ch.Icon)
		}
	}

	// Second channel has no icon element; it must parse as absent.
	if len(tv.Channels) > 1 && tv.Channels[1].Icon != nil {
		t.Errorf("Expected nil icon for channel without one, got %+v", tv.Channels[1].Icon)
	}

	if len(tv.Programs) != 2 {
		t.Errorf("Expected 2 programs, got %d", len(tv.Programs))
	}

	if len(tv.Programs) > 0 {
		p := tv.Programs[0]
		if p.Channel != "ts114" {
			t.Errorf("Expected programme channel 'ts114', got '%s'", p.Channel)
		}
		if p.Title != "Morning Highlights" {
			t.Errorf("Expected programme title 'Morning Highlights', got '%s'", p.Title)
		}
		if p.Start != "20240108100000 +0000" {
			t.Errorf("Expected programme start '20240108100000 +0000', got '%s'", p.Start)
		}
		if p.Stop != "20240108110000 +0000" {
			t.Errorf("Expected programme stop '20240108110000 +0000', got '%s'", p.Stop)
		}
		if p.Icon == nil || p.Icon.Src != "https://img.example.com/highlights.png" {
			t.Errorf("Expected programme icon, got %+v", p.Icon)
		}
	}

	if len(tv.Programs) > 1 {
		p := tv.Programs[1]
		if p.Description != "" {
			t.Errorf("Expected empty description, got '%s'", p.Description)
		}
		if p.Icon != nil {
			t.Errorf("Expected nil icon for programme without one, got %+v", p.Icon)
		}
	}
}

func TestParseStreamInvalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "invalid XML",
			input:   "<tv><channel>unclosed",
			wantErr: true,
		},
		{
			name:    "empty document",
			input:   "",
			wantErr: true,
		},
		{
			name:    "valid empty TV",
			input:   `<?xml version="1.0" encoding="utf-8"?><tv></tv>`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStream(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseStream() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
