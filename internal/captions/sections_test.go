package captions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const bilingual = `--- ORIGINAL TRANSCRIPTION ---
[00:00:00] Speaker 1: Hola a todos.
[music]

--- TRANSLATION (English) ---
[00:00:00] Speaker 1: Hello everyone.
[music]`

func TestSplitSections(t *testing.T) {
	s := SplitSections(bilingual)
	assert.Equal(t, "[00:00:00] Speaker 1: Hola a todos.\n[music]", s.Original)
	assert.Equal(t, "[00:00:00] Speaker 1: Hello everyone.\n[music]", s.Translation)
	assert.Equal(t, "English", s.Language)
}

func TestSplitSectionsWithoutTranslation(t *testing.T) {
	s := SplitSections("Speaker 1: just one language\n")
	assert.Equal(t, "Speaker 1: just one language", s.Original)
	assert.Empty(t, s.Translation)
	assert.Empty(t, s.Language)
}

func TestSection(t *testing.T) {
	assert.Equal(t, SplitSections(bilingual).Translation, Section(bilingual, "Translation"))
	assert.Equal(t, SplitSections(bilingual).Original, Section(bilingual, "original"))
	assert.Equal(t, bilingual, Section(bilingual, ""))
}
