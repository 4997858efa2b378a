package runtime

import (
	"embed"

	"chat-room/moderation"
)

//go:embed censored/*
var censoredFolder embed.FS

// NewDefaultModerator builds a moderator from the embedded word lists and
// reports the languages it loaded.
func NewDefaultModerator(charReplacement rune) (moderation.Moderator, []string, error) {
	data, err := NewCensoredLoader(censoredFolder).LoadAll("censored")
	if err != nil {
		return moderation.Moderator{}, nil, err
	}
	m, err := moderation.NewModerator(data.Words, charReplacement)
	if err != nil {
		return moderation.Moderator{}, nil, err
	}
	return m, data.Languages, nil
}
