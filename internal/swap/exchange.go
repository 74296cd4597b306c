package swap

import (
	"github.com/google/uuid"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/lifecycle"
	"github.com/julianstephens/hotset/internal/models"
)

// Exchange swaps sceneOutID on target with sceneInID on source. Each original
// is marked swapped_out in place and a pending copy is inserted on the other
// day directly after the scene it replaces. Both snapshots are left untouched
// unless the whole exchange succeeds. A rejection from either day is returned
// as a CrossDayTransactionError naming that side.
func Exchange(target *models.Snapshot, sceneOutID string, source *models.Snapshot, sceneInID string) error {
	if target.Session.ID == source.Session.ID {
		return apperr.NewValidation("source_session_id", "must differ from the active session")
	}
	t, s := target.Clone(), source.Clone()

	outIdx := t.Item(sceneOutID)
	if outIdx < 0 {
		return rejected(apperr.SwapSideTarget, &t, apperr.NewNotFound("scene", sceneOutID))
	}
	inIdx := s.Item(sceneInID)
	if inIdx < 0 {
		return rejected(apperr.SwapSideSource, &s, apperr.NewNotFound("scene", sceneInID))
	}
	if !s.Items[inIdx].IsScene() {
		return rejected(apperr.SwapSideSource, &s, apperr.NewValidation("scene_in_id", "%s is not a scene", sceneInID))
	}
	out, in := t.Items[outIdx], s.Items[inIdx]

	if err := lifecycle.SwapOut(&t, sceneOutID); err != nil {
		return rejected(apperr.SwapSideTarget, &t, err)
	}
	if err := lifecycle.SwapOut(&s, sceneInID); err != nil {
		return rejected(apperr.SwapSideSource, &s, err)
	}
	if err := lifecycle.InsertAt(&t, outIdx+1, transfer(in)); err != nil {
		return rejected(apperr.SwapSideTarget, &t, err)
	}
	if err := lifecycle.InsertAt(&s, inIdx+1, transfer(out)); err != nil {
		return rejected(apperr.SwapSideSource, &s, err)
	}

	*target, *source = t, s
	return nil
}

func rejected(side apperr.SwapSide, snap *models.Snapshot, err error) error {
	return &apperr.CrossDayTransactionError{Side: side, SessionID: snap.Session.ID, Err: err}
}

// transfer copies a scene for another day, remembering the first scene in
// its chain of swaps. A shared setup stays behind, so the copy gets its full
// estimate back.
func transfer(scene models.ScheduleItem) models.ScheduleItem {
	cp := scene.Clone()
	cp.ID = uuid.New().String()
	cp.SkipReason = ""
	if scene.OriginItemID == "" {
		cp.OriginItemID = scene.ID
	}
	cp.EstimatedMinutes += scene.SetupReducedMinutes
	cp.SetupReducedMinutes = 0
	return cp
}
