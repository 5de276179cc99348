package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockTarget implements Target with overridable behavior per call.
type mockTarget struct {
	mu      sync.Mutex
	created []string
	updated []string
	reloads int

	state       []ExistingHost
	stateErr    error
	clusters    ClusterCatalog
	clustersErr error

	createFunc func(host DesiredHost) error
	updateFunc func(id string, host DesiredHost, diff FieldDiff) error
	reloadErr  error
}

func (m *mockTarget) FetchState(ctx context.Context) ([]ExistingHost, error) {
	return m.state, m.stateErr
}

func (m *mockTarget) FetchClusters(ctx context.Context) (ClusterCatalog, error) {
	return m.clusters, m.clustersErr
}

func (m *mockTarget) CreateHost(ctx context.Context, host DesiredHost) error {
	if m.createFunc != nil {
		if err := m.createFunc(host); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.created = append(m.created, host.Name)
	m.mu.Unlock()
	return nil
}

func (m *mockTarget) UpdateHost(ctx context.Context, id string, host DesiredHost, diff FieldDiff) error {
	if m.updateFunc != nil {
		if err := m.updateFunc(id, host, diff); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.updated = append(m.updated, host.Name)
	m.mu.Unlock()
	return nil
}

func (m *mockTarget) Reload(ctx context.Context) error {
	if m.reloadErr != nil {
		return m.reloadErr
	}
	m.mu.Lock()
	m.reloads++
	m.mu.Unlock()
	return nil
}

func (m *mockTarget) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

func (m *mockTarget) reloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloads
}

// transientErr is retryable for tests.
type transientErr struct{ msg string }

func (e transientErr) Error() string   { return e.msg }
func (e transientErr) Transient() bool { return true }

func testExecutor(target Target) *Executor {
	return &Executor{
		Target:  target,
		Logger:  zap.NewNop(),
		Workers: 4,
		Retries: 2,
		Backoff: time.Millisecond,
	}
}

func planOf(actions ...SyncAction) *SyncPlan {
	return &SyncPlan{Actions: actions}
}

func createAction(id, name string) SyncAction {
	return SyncAction{
		Type:    ActionCreate,
		Key:     Key(id),
		Desired: desiredFixture(id, name, "Cluster-01"),
		Reason:  "host not present in target",
	}
}

func updateAction(id, name string) SyncAction {
	existing := existingFixture(Key(id), name, "Cluster-01")
	return SyncAction{
		Type:     ActionUpdate,
		Key:      Key(id),
		Desired:  desiredFixture(id, name, "Cluster-01"),
		Existing: &existing,
		Diff:     &FieldDiff{HashtagsAdded: []string{"new"}},
		Reason:   "differs: hashtags",
	}
}

func noopAction(id, name string) SyncAction {
	existing := existingFixture(Key(id), name, "Cluster-01")
	return SyncAction{
		Type:     ActionNoop,
		Key:      Key(id),
		Desired:  desiredFixture(id, name, "Cluster-01"),
		Existing: &existing,
		Reason:   "in sync",
	}
}

// TestExecutor_AppliesPlan applies a mixed plan and checks counts and
// the single reload.
func TestExecutor_AppliesPlan(t *testing.T) {
	target := &mockTarget{}
	report := &RunReport{}

	plan := planOf(
		createAction("s1", "web01"),
		createAction("s2", "web02"),
		updateAction("s3", "web03"),
		noopAction("s4", "web04"),
	)

	testExecutor(target).Execute(context.Background(), plan, report)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Failures)
	assert.True(t, report.ReloadIssued)
	assert.Equal(t, 1, target.reloadCount(), "exactly one reload per run")
	assert.ElementsMatch(t, []string{"web01", "web02"}, target.created)
	assert.Equal(t, []string{"web03"}, target.updated)
}

// TestExecutor_RetriesTransient checks that transient failures are
// retried until the budget runs out.
func TestExecutor_RetriesTransient(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	target := &mockTarget{
		createFunc: func(host DesiredHost) error {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts <= 2 {
				return transientErr{msg: "connection reset"}
			}
			return nil
		},
	}
	report := &RunReport{}

	testExecutor(target).Execute(context.Background(), planOf(createAction("s1", "web01")), report)

	assert.Equal(t, 3, attempts, "two retries after the first attempt")
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Failed)
	assert.True(t, report.ReloadIssued)
}

// TestExecutor_PermanentFailureNotRetried checks that non-transient
// errors fail immediately.
func TestExecutor_PermanentFailureNotRetried(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	target := &mockTarget{
		createFunc: func(host DesiredHost) error {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			return errors.New("authentication failed")
		},
	}
	report := &RunReport{}

	testExecutor(target).Execute(context.Background(), planOf(createAction("s1", "web01")), report)

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, Key("s1"), report.Failures[0].Key)
	assert.Equal(t, StageExecute, report.Failures[0].Stage)
	assert.False(t, report.ReloadIssued, "no reload when nothing changed")
	assert.Equal(t, 0, target.reloadCount())
}

// TestExecutor_FailureIsolation checks that one failed action does not
// block the others.
func TestExecutor_FailureIsolation(t *testing.T) {
	target := &mockTarget{
		createFunc: func(host DesiredHost) error {
			if host.Name == "web01" {
				return errors.New("boom")
			}
			return nil
		},
	}
	report := &RunReport{}

	plan := planOf(createAction("s1", "web01"), createAction("s2", "web02"))
	testExecutor(target).Execute(context.Background(), plan, report)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.ReloadIssued, "reload still happens for the successful action")
}

// TestExecutor_NothingToApply checks an all-noop plan touches nothing.
func TestExecutor_NothingToApply(t *testing.T) {
	target := &mockTarget{}
	report := &RunReport{}

	testExecutor(target).Execute(context.Background(), planOf(noopAction("s1", "web01")), report)

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.False(t, report.ReloadIssued)
	assert.Equal(t, 0, target.reloadCount())
}

// TestExecutor_ReloadFailureReported checks a failed reload is recorded
// without discarding the applied work.
func TestExecutor_ReloadFailureReported(t *testing.T) {
	target := &mockTarget{reloadErr: errors.New("reload rejected")}
	report := &RunReport{}

	testExecutor(target).Execute(context.Background(), planOf(createAction("s1", "web01")), report)

	assert.Equal(t, 1, report.Created)
	assert.False(t, report.ReloadIssued)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, StageReload, report.Failures[0].Stage)
}

// TestExecutor_BoundedConcurrency checks the worker cap is honored.
func TestExecutor_BoundedConcurrency(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
	)
	target := &mockTarget{
		createFunc: func(host DesiredHost) error {
			mu.Lock()
			inFlight++
			if inFlight > maxSeen {
				maxSeen = inFlight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		},
	}
	report := &RunReport{}

	executor := testExecutor(target)
	executor.Workers = 2

	plan := planOf(
		createAction("s1", "a"), createAction("s2", "b"), createAction("s3", "c"),
		createAction("s4", "d"), createAction("s5", "e"), createAction("s6", "f"),
	)
	executor.Execute(context.Background(), plan, report)

	assert.Equal(t, 6, report.Created)
	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxSeen, 2)
}

// TestExecutor_CancelStopsDispatch checks that cancellation stops new
// dispatches while the in-flight action completes.
func TestExecutor_CancelStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	started := make(chan struct{})
	proceed := make(chan struct{})

	target := &mockTarget{
		createFunc: func(host DesiredHost) error {
			once.Do(func() { close(started) })
			<-proceed
			return nil
		},
	}
	report := &RunReport{}

	executor := testExecutor(target)
	executor.Workers = 1

	done := make(chan struct{})
	go func() {
		defer close(done)
		executor.Execute(ctx, planOf(
			createAction("s1", "web01"),
			createAction("s2", "web02"),
			createAction("s3", "web03"),
		), report)
	}()

	<-started
	cancel()
	// The dispatcher must observe cancellation before the worker
	// frees up, or it could race to hand out the next action.
	time.Sleep(20 * time.Millisecond)
	close(proceed)
	<-done

	assert.Equal(t, 1, report.Created, "only the in-flight action completes")
	assert.Equal(t, 1, target.createdCount())
	assert.True(t, report.ReloadIssued, "the completed work still gets its reload")
}
