package memory

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync"
	"sync/atomic"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// snapshot is one published version of the store. It is never modified.
type snapshot struct {
	configs      *iradix.Tree[*domain.Config]         // key -> config
	configIDs    *iradix.Tree[string]                 // id -> key
	instances    *iradix.Tree[*domain.ConfigInstance] // (config, env, group) -> instance
	environments *iradix.Tree[*domain.Environment]    // name -> env
	envIDs       *iradix.Tree[string]                 // id -> name
	projects     *iradix.Tree[*domain.Project]        // name -> project
	projectIDs   *iradix.Tree[string]                 // id -> name
	operators    *iradix.Tree[*domain.Operator]       // id -> operator
	logs         *iradix.Tree[*domain.OperationLog]   // sequence -> entry

	configCount   int
	nextConfigID  int64
	nextProjectID int64
	nextLogSeq    int64
}

// txn is a pending version built by one writer.
type txn struct {
	configs      *iradix.Txn[*domain.Config]
	configIDs    *iradix.Txn[string]
	instances    *iradix.Txn[*domain.ConfigInstance]
	environments *iradix.Txn[*domain.Environment]
	envIDs       *iradix.Txn[string]
	projects     *iradix.Txn[*domain.Project]
	projectIDs   *iradix.Txn[string]
	operators    *iradix.Txn[*domain.Operator]
	logs         *iradix.Txn[*domain.OperationLog]

	configCount   int
	nextConfigID  int64
	nextProjectID int64
	nextLogSeq    int64
}

// view is a read-only handle on either a snapshot or a pending txn.
type view struct {
	configs      *iradix.Node[*domain.Config]
	configIDs    *iradix.Node[string]
	instances    *iradix.Node[*domain.ConfigInstance]
	environments *iradix.Node[*domain.Environment]
	envIDs       *iradix.Node[string]
	projects     *iradix.Node[*domain.Project]
	projectIDs   *iradix.Node[string]
	operators    *iradix.Node[*domain.Operator]
	logs         *iradix.Node[*domain.OperationLog]
	configCount  int
}

func (s *snapshot) begin() *txn {
	return &txn{
		configs:       s.configs.Txn(),
		configIDs:     s.configIDs.Txn(),
		instances:     s.instances.Txn(),
		environments:  s.environments.Txn(),
		envIDs:        s.envIDs.Txn(),
		projects:      s.projects.Txn(),
		projectIDs:    s.projectIDs.Txn(),
		operators:     s.operators.Txn(),
		logs:          s.logs.Txn(),
		configCount:   s.configCount,
		nextConfigID:  s.nextConfigID,
		nextProjectID: s.nextProjectID,
		nextLogSeq:    s.nextLogSeq,
	}
}

func (s *snapshot) view() view {
	return view{
		configs:      s.configs.Root(),
		configIDs:    s.configIDs.Root(),
		instances:    s.instances.Root(),
		environments: s.environments.Root(),
		envIDs:       s.envIDs.Root(),
		projects:     s.projects.Root(),
		projectIDs:   s.projectIDs.Root(),
		operators:    s.operators.Root(),
		logs:         s.logs.Root(),
		configCount:  s.configCount,
	}
}

func (t *txn) commit() *snapshot {
	return &snapshot{
		configs:       t.configs.Commit(),
		configIDs:     t.configIDs.Commit(),
		instances:     t.instances.Commit(),
		environments:  t.environments.Commit(),
		envIDs:        t.envIDs.Commit(),
		projects:      t.projects.Commit(),
		projectIDs:    t.projectIDs.Commit(),
		operators:     t.operators.Commit(),
		logs:          t.logs.Commit(),
		configCount:   t.configCount,
		nextConfigID:  t.nextConfigID,
		nextProjectID: t.nextProjectID,
		nextLogSeq:    t.nextLogSeq,
	}
}

func (t *txn) view() view {
	return view{
		configs:      t.configs.Root(),
		configIDs:    t.configIDs.Root(),
		instances:    t.instances.Root(),
		environments: t.environments.Root(),
		envIDs:       t.envIDs.Root(),
		projects:     t.projects.Root(),
		projectIDs:   t.projectIDs.Root(),
		operators:    t.operators.Root(),
		logs:         t.logs.Root(),
		configCount:  t.configCount,
	}
}

// Store is an in-memory implementation of every store interface.
type Store struct {
	mu     sync.Mutex
	snap   atomic.Pointer[snapshot]
	logger *slog.Logger
}

// New creates an empty store whose environments are environmentNames,
// assigned IDs 1..n in order. Duplicate or empty names are skipped.
func New(environmentNames []string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	empty := &snapshot{
		configs:       iradix.New[*domain.Config](),
		configIDs:     iradix.New[string](),
		instances:     iradix.New[*domain.ConfigInstance](),
		environments:  iradix.New[*domain.Environment](),
		envIDs:        iradix.New[string](),
		projects:      iradix.New[*domain.Project](),
		projectIDs:    iradix.New[string](),
		operators:     iradix.New[*domain.Operator](),
		logs:          iradix.New[*domain.OperationLog](),
		nextConfigID:  1,
		nextProjectID: 1,
		nextLogSeq:    1,
	}

	t := empty.begin()
	var nextEnvID int64 = 1
	for _, name := range environmentNames {
		if name == "" {
			continue
		}
		if _, exists := t.environments.Get([]byte(name)); exists {
			continue
		}
		env := &domain.Environment{ID: nextEnvID, Name: name}
		t.environments.Insert([]byte(name), env)
		t.envIDs.Insert(idKey(env.ID), name)
		nextEnvID++
	}

	s := &Store{logger: logger.With(slog.String("component", "memory_store"))}
	s.snap.Store(t.commit())
	return s
}

func (s *Store) read() view {
	return s.snap.Load().view()
}

// update runs fn against a pending version and publishes it if fn succeeds.
func (s *Store) update(fn func(*txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.snap.Load().begin()
	if err := fn(t); err != nil {
		return err
	}

	s.snap.Store(t.commit())
	return nil
}

// WithinTx implements store.Transactor. Writes made through repos become
// visible to other readers only when fn returns nil; otherwise the pending
// version is discarded. Other writers wait until fn returns.
func (s *Store) WithinTx(ctx context.Context, fn store.RepoFn) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.snap.Load().begin()
	b := binding{store: s, tx: t}

	if err := fn(ctx, store.Repositories{
		Configs:       &configStore{b},
		Instances:     &instanceStore{b},
		OperationLogs: &operationLogStore{b},
	}); err != nil {
		log.Debug("discarded pending transaction", slog.String("error", err.Error()))
		return err
	}

	s.snap.Store(t.commit())
	return nil
}

var _ store.Transactor = (*Store)(nil)

// Configs returns the config catalog bound to the published version.
func (s *Store) Configs() store.ConfigStore { return &configStore{binding{store: s}} }

// Instances returns the instance store bound to the published version.
func (s *Store) Instances() store.InstanceStore { return &instanceStore{binding{store: s}} }

// OperationLogs returns the audit sink bound to the published version.
func (s *Store) OperationLogs() store.OperationLogStore {
	return &operationLogStore{binding{store: s}}
}

// Environments returns the environment directory.
func (s *Store) Environments() store.EnvironmentStore { return &environmentStore{binding{store: s}} }

// Projects returns the project directory.
func (s *Store) Projects() store.ProjectStore { return &projectStore{binding{store: s}} }

// Operators returns the operator registry.
func (s *Store) Operators() store.OperatorStore { return &operatorStore{binding{store: s}} }

// binding routes a store's reads and writes either to the published version
// or to a pending transaction.
type binding struct {
	store *Store
	tx    *txn
}

func (b binding) view() view {
	if b.tx != nil {
		return b.tx.view()
	}
	return b.store.read()
}

func (b binding) write(fn func(*txn) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	return b.store.update(fn)
}

func (b binding) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, b.store.logger)
}

// idKey encodes an ID so that byte order matches numeric order.
func idKey(id int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

func instanceKey(k domain.InstanceKey) []byte {
	b := make([]byte, 0, 16+len(k.Group))
	b = binary.BigEndian.AppendUint64(b, uint64(k.ConfigID))
	b = binary.BigEndian.AppendUint64(b, uint64(k.EnvironmentID))
	return append(b, k.Group...)
}
