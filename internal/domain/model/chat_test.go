package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveChannelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		title  string
		chatID string
		want   string
	}{
		{
			name:   "simple title",
			title:  "General",
			chatID: "b1c2d3e4-0000-0000-0000-000000000000",
			want:   "#general-b1c2d3e4",
		},
		{
			name:   "spaces and punctuation collapse to hyphens",
			title:  "Ops / War Room!",
			chatID: "deadbeef-1111-2222-3333-444444444444",
			want:   "#ops-war-room-deadbeef",
		},
		{
			name:   "long title truncated to 30 runes",
			title:  strings.Repeat("abcde-", 10),
			chatID: "cafe0123-aaaa-bbbb-cccc-dddddddddddd",
			want:   "#abcde-abcde-abcde-abcde-abcde-cafe0123",
		},
		{
			name:   "title with no slug characters falls back to suffix",
			title:  "!!!",
			chatID: "12345678-9999-0000-1111-222222222222",
			want:   "#12345678",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DeriveChannelName(tt.title, tt.chatID)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsChannelName(got))
		})
	}
}

func TestDeriveChannelName_StableAcrossCalls(t *testing.T) {
	t.Parallel()

	first := DeriveChannelName("Team Chat", "0a1b2c3d-e4f5-6789-abcd-ef0123456789")
	second := DeriveChannelName("Team Chat", "0a1b2c3d-e4f5-6789-abcd-ef0123456789")
	assert.Equal(t, first, second)
}

func TestDeriveChannelName_SameSlugDifferentIDs(t *testing.T) {
	t.Parallel()

	a := DeriveChannelName("general", "aaaa1111-0000-0000-0000-000000000000")
	b := DeriveChannelName("general", "bbbb2222-0000-0000-0000-000000000000")
	assert.NotEqual(t, a, b)
}

func TestIsChannelName(t *testing.T) {
	t.Parallel()

	assert.True(t, IsChannelName("#general"))
	assert.False(t, IsChannelName("wavebot"))
	assert.False(t, IsChannelName(""))
}

func TestCreateChatRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := CreateChatRequest{Title: "General", OwnerID: "user-1"}
	require.NoError(t, valid.Validate())

	empty := CreateChatRequest{Title: "   ", OwnerID: "user-1"}
	assert.Error(t, empty.Validate())

	long := CreateChatRequest{Title: strings.Repeat("x", 129), OwnerID: "user-1"}
	assert.Error(t, long.Validate())

	noOwner := CreateChatRequest{Title: "General"}
	assert.Error(t, noOwner.Validate())
}
