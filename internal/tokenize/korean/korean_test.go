package korean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefine_StripsTopicMarkerAfterOpenSyllable(t *testing.T) {
	// "나는" = 나 (no final consonant) + 는, which only attaches after an
	// open syllable.
	r := New()
	assert.Equal(t, []string{"나"}, r.Refine("나는"))
}

func TestRefine_StripsSubjectMarkerAfterClosedSyllable(t *testing.T) {
	// "날은" = 날 (final consonant ㄹ) + 은, which only attaches after a
	// closed syllable.
	r := New()
	assert.Equal(t, []string{"날"}, r.Refine("날은"))
}

func TestRefine_LeavesMismatchedBatchimUnchanged(t *testing.T) {
	// "날는" mismatches: 날 has a final consonant but 는 requires none.
	r := New()
	assert.Equal(t, []string{"날는"}, r.Refine("날는"))
}

func TestRefine_LeavesBareParticleUnchanged(t *testing.T) {
	// Stripping would leave an empty stem, which is never allowed.
	r := New()
	assert.Equal(t, []string{"은"}, r.Refine("은"))
}

func TestRefine_NeutralParticleAttachesEitherWay(t *testing.T) {
	r := New()
	assert.Equal(t, []string{"너"}, r.Refine("너의"))
}

func TestRefine_SplitsMixedScriptRuns(t *testing.T) {
	r := New()
	assert.Equal(t, []string{"abc", "가나다"}, r.Refine("abc가나다"))
}

func TestRefine_NonHangulPassesThroughUnchanged(t *testing.T) {
	r := New()
	assert.Equal(t, []string{"abc"}, r.Refine("abc"))
}

func TestHasFinalConsonant(t *testing.T) {
	assert.True(t, hasFinalConsonant('날'))  // ends in ㄹ
	assert.False(t, hasFinalConsonant('나')) // open syllable
}
