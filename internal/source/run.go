package source

import (
	"context"

	"taskprogress-cli/internal/model"
	"taskprogress-cli/internal/store"

	"go.uber.org/zap"
)

// Run performs the widget's one-time load: fetch, then seed st.
//
// A failed fetch is reported to log and settles st into its empty state; it is
// returned for callers that want to surface it, but it is never fatal.
func Run(ctx context.Context, f Fetcher, st *store.State, log *zap.Logger) error {
	groups, err := f.Fetch(ctx)
	return Apply(st, groups, err, log)
}

// Apply seeds st from a finished fetch. It is split from Run so the TUI can
// fetch in a command and apply the result on its update loop.
func Apply(st *store.State, groups []model.Group, err error, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if err != nil {
		log.Error("error fetching progress data", zap.Error(err))
		st.Fail(err)
		return err
	}
	st.Load(groups)
	log.Debug("progress data loaded", zap.Int("groups", st.Len()), zap.Int("overall", st.Overall()))
	return nil
}
