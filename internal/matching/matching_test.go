package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/progress"
)

func registry(t *testing.T) *Registry {
	t.Helper()
	r, err := DefaultRegistry()
	require.NoError(t, err)
	return r
}

func board(t *testing.T, name string) *Board {
	t.Helper()
	b, err := registry(t).Board(name)
	require.NoError(t, err)
	return b
}

func TestDefaultRegistry_CoversContent(t *testing.T) {
	r := registry(t)
	assert.Len(t, r.Names(), 6)

	repo, err := content.Load()
	require.NoError(t, err)
	assert.NoError(t, r.Validate(repo))
}

func TestRegistry_ValidateRejectsUnknownComponent(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	repo, err := content.Load()
	require.NoError(t, err)

	err = r.Validate(repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MatchTheMethodDragDrop")
}

func TestNewRegistry_RejectsBrokenPuzzle(t *testing.T) {
	_, err := NewRegistry(Puzzle{
		Component: "Broken",
		Mode:      ModeMatch,
		Labels:    []Item{{ID: "a"}},
		Targets:   []Item{{ID: "x"}, {ID: "y"}},
		Answer:    map[string]string{"x": "missing"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot fill")
	assert.Contains(t, err.Error(), "unknown IDs")
}

func TestMatch_PickDropReplaces(t *testing.T) {
	b := board(t, "MatchTheMethodDragDrop")

	require.NoError(t, b.Pick("rag"))
	require.NoError(t, b.Drop("marketingContent"))
	assert.Empty(t, b.Picked())
	assert.Len(t, b.Available(), 3)

	// Dropping another label on the same target returns the first.
	require.NoError(t, b.Assign("promptOnly", "marketingContent"))
	ids := itemIDs(b.Available())
	assert.Contains(t, ids, "rag")
	assert.NotContains(t, ids, "promptOnly")

	// Moving a placed label empties its old target.
	require.NoError(t, b.Assign("promptOnly", "hrPolicyBot"))
	assert.Empty(t, b.Placed("marketingContent"))

	assert.ErrorIs(t, b.Drop("hrPolicyBot"), ErrNothingPicked)
	assert.Error(t, b.Pick("promptOnly"), "placed labels cannot be picked")
}

func TestMatch_CheckRequiresReady(t *testing.T) {
	b := board(t, "MatchTheMethodDragDrop")
	require.NoError(t, b.Assign("promptOnly", "marketingContent"))

	_, err := b.Check()
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.False(t, b.Ready())
}

func TestMatch_CheckAndFeedbackLifecycle(t *testing.T) {
	b := board(t, "MatchTheMethodDragDrop")
	require.NoError(t, b.Assign("promptOnly", "marketingContent"))
	require.NoError(t, b.Assign("rag", "hrPolicyBot"))
	require.NoError(t, b.Assign("fineTuning", "customerOnboarding"))
	require.NoError(t, b.Assign("agentic", "medicalTranscription"))
	require.True(t, b.Ready())

	_, shown := b.Feedback()
	assert.False(t, shown, "no feedback before a check")

	fb, err := b.Check()
	require.NoError(t, err)
	require.Len(t, fb, 4)
	correct, total := b.Score()
	assert.Equal(t, 2, correct)
	assert.Equal(t, 4, total)
	assert.True(t, fb[0].Correct)
	assert.Contains(t, fb[0].Message, "Correct!")
	assert.False(t, fb[2].Correct)
	assert.Contains(t, fb[2].Message, "Wrong approach")

	require.NoError(t, b.Remove("medicalTranscription"))
	_, shown = b.Feedback()
	assert.False(t, shown, "mutation hides feedback")
	assert.False(t, b.Ready(), "a removed assignment blocks checking again")
}

func TestMatch_AnswerRestore(t *testing.T) {
	b := board(t, "RiskRadarDragDrop")
	require.NoError(t, b.Assign("dataBias", "hiringModel"))
	require.NoError(t, b.Assign("piiPrivacy", "cameraTracking"))

	v, err := b.Answer()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hiringModel":"dataBias","cameraTracking":"piiPrivacy"}`, string(v.Raw()))

	other := board(t, "RiskRadarDragDrop")
	require.NoError(t, other.Restore(v))
	assert.Equal(t, "dataBias", other.Placed("hiringModel")[0].ID)
	assert.Len(t, other.Available(), 2)

	// Stale IDs in stored answers are skipped.
	stale, err := progress.RawValue([]byte(`{"hiringModel":"gone","nope":"rag"}`))
	require.NoError(t, err)
	require.NoError(t, other.Restore(stale))
	assert.Len(t, other.Available(), 4)
}

func TestSort_StakeholderCapacities(t *testing.T) {
	b := board(t, "StakeholderDragDrop")

	for _, id := range []string{"cto", "ciso", "legal"} {
		require.NoError(t, b.Assign(id, "criticalStakeholders"))
	}
	assert.ErrorIs(t, b.Assign("sales", "criticalStakeholders"), ErrBucketFull)
	assert.False(t, b.Ready())

	require.NoError(t, b.Assign("cfo", "executiveSponsor"))
	require.NoError(t, b.Assign("sales", "executiveSponsor"))
	assert.Equal(t, "sales", b.Placed("executiveSponsor")[0].ID, "sponsor slot is replaced")
	assert.Contains(t, itemIDs(b.Available()), "cfo")
	assert.True(t, b.Ready())

	_, err := b.Check()
	assert.ErrorIs(t, err, ErrNoAnswerKey)

	v, err := b.Answer()
	require.NoError(t, err)
	assert.JSONEq(t, `{"criticalStakeholders":["cto","ciso","legal"],"executiveSponsor":"sales"}`, string(v.Raw()))

	other := board(t, "StakeholderDragDrop")
	require.NoError(t, other.Restore(v))
	assert.True(t, other.Ready())
}

func TestSort_NinetyDayDash(t *testing.T) {
	b := board(t, "NinetyDayDashDragDrop")
	p := b.Puzzle()

	for label, phase := range p.Answer {
		require.NoError(t, b.Assign(label, phase))
	}
	// One mistake.
	require.NoError(t, b.Assign("3", "weeks1-2"))
	require.True(t, b.Ready())

	fb, err := b.Check()
	require.NoError(t, err)
	assert.Len(t, fb, 12)
	correct, total := b.Score()
	assert.Equal(t, 11, correct)
	assert.Equal(t, 12, total)
	for _, f := range fb {
		if f.Label == "3" {
			assert.False(t, f.Correct)
			assert.Equal(t, "Belongs in Month 3: Production Readiness", f.Message)
		}
	}

	v, err := b.Answer()
	require.NoError(t, err)
	other := board(t, "NinetyDayDashDragDrop")
	require.NoError(t, other.Restore(v))
	_, shown := other.Feedback()
	assert.True(t, shown, "checked state survives a round trip")
}

func itemIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
