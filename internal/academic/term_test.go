package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

func TestNextTermCalendar(t *testing.T) {
	cases := []struct {
		from Term
		want Term
	}{
		{Term{FirstYear, FirstSemester}, Term{FirstYear, SecondSemester}},
		{Term{FirstYear, SecondSemester}, Term{SecondYear, FirstSemester}},
		{Term{SecondYear, FirstSemester}, Term{SecondYear, SecondSemester}},
		{Term{SecondYear, SecondSemester}, Term{ThirdYear, FirstSemester}},
		{Term{ThirdYear, FirstSemester}, Term{ThirdYear, SecondSemester}},
		{Term{ThirdYear, SecondSemester}, Term{FourthYear, FirstSemester}},
		{Term{FourthYear, FirstSemester}, Term{FourthYear, SecondSemester}},
		{Term{FirstYear, Summer}, Term{SecondYear, FirstSemester}},
		{Term{ThirdYear, Summer}, Term{FourthYear, FirstSemester}},
		{Term{"2ND YEAR", "2nd semester"}, Term{ThirdYear, FirstSemester}},
	}
	for _, tc := range cases {
		t.Run(tc.from.String(), func(t *testing.T) {
			next, ok, err := NextTerm(tc.from)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestNextTermGraduation(t *testing.T) {
	next, ok, err := NextTerm(Term{FourthYear, SecondSemester})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Term{}, next)
}

func TestNextTermInvalid(t *testing.T) {
	for _, term := range []Term{
		{FourthYear, Summer},
		{"5th Year", FirstSemester},
		{FirstYear, "Winter"},
		{"", ""},
	} {
		_, ok, err := NextTerm(term)
		assert.False(t, ok)
		assert.ErrorIs(t, err, appErrors.ErrInvalidTerm, term.String())
	}
}

func TestNextTermEightStepsGraduates(t *testing.T) {
	term := InitialTerm
	steps := 0
	for {
		next, ok, err := NextTerm(term)
		require.NoError(t, err)
		steps++
		if !ok {
			break
		}
		term = next
		require.Less(t, steps, 8)
	}
	assert.Equal(t, 8, steps)
	assert.Equal(t, Term{FourthYear, SecondSemester}, term)
}

func TestParseTermCanonicalises(t *testing.T) {
	term, err := ParseTerm(" 3rd year ", "SUMMER")
	require.NoError(t, err)
	assert.Equal(t, Term{ThirdYear, Summer}, term)
	assert.True(t, term.Equal(Term{"3RD YEAR", "summer"}))
}
