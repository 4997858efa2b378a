package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor_ReplacesForbiddenWord(t *testing.T) {
	req := require.New(t)

	// Given a moderator built with one forbidden word
	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	// When a message containing the word is censored
	censored, found := moderator.Censor("you are an idiot sometimes")

	// Then the word is starred out and reported
	req.Equal("you are an ***** sometimes", censored)
	req.Equal([]string{"idiot"}, found)
}

func TestModerator_Censor_LeetSpeakVariant(t *testing.T) {
	req := require.New(t)

	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	// When the word is obfuscated with leet speak
	censored, found := moderator.Censor("what an 1d10t")

	// Then the obfuscated form is still caught
	req.Equal("what an *****", censored)
	req.Len(found, 1)
}

func TestModerator_Censor_CleanMessageUntouched(t *testing.T) {
	req := require.New(t)

	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	censored, found := moderator.Censor("hello everyone")

	req.Equal("hello everyone", censored)
	req.Empty(found)
}

func TestModerator_Censor_PreservesSurroundingPunctuation(t *testing.T) {
	req := require.New(t)

	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	censored, _ := moderator.Censor("idiot!")

	req.Equal("*****!", censored)
}
