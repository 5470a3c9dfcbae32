package memory

import (
	"context"
	"fmt"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/store"
)

type environmentStore struct {
	binding
}

var _ store.EnvironmentStore = (*environmentStore)(nil)

func (s *environmentStore) GetByName(_ context.Context, name string) (*domain.Environment, error) {
	env, ok := s.view().environments.Get([]byte(name))
	if !ok {
		return nil, store.ErrEnvironmentNotFound
	}
	e := *env
	return &e, nil
}

// List returns environments in ID order; the ID index is keyed big-endian.
func (s *environmentStore) List(_ context.Context) ([]*domain.Environment, error) {
	v := s.view()
	envs := make([]*domain.Environment, 0)
	v.envIDs.Walk(func(_ []byte, name string) bool {
		if env, ok := v.environments.Get([]byte(name)); ok {
			e := *env
			envs = append(envs, &e)
		}
		return false
	})
	return envs, nil
}

type projectStore struct {
	binding
}

var _ store.ProjectStore = (*projectStore)(nil)

func (s *projectStore) Create(_ context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	return s.write(func(t *txn) error {
		if _, exists := t.projects.Get([]byte(project.Name)); exists {
			return fmt.Errorf("%w: %s", store.ErrProjectExists, project.Name)
		}

		project.ID = t.nextProjectID
		t.nextProjectID++

		stored := *project
		t.projects.Insert([]byte(stored.Name), &stored)
		t.projectIDs.Insert(idKey(stored.ID), stored.Name)
		return nil
	})
}

func (s *projectStore) GetByName(_ context.Context, name string) (*domain.Project, error) {
	project, ok := s.view().projects.Get([]byte(name))
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	p := *project
	return &p, nil
}

func (s *projectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	name, ok := s.view().projectIDs.Get(idKey(id))
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	return s.GetByName(ctx, name)
}

type operatorStore struct {
	binding
}

var _ store.OperatorStore = (*operatorStore)(nil)

func (s *operatorStore) Create(_ context.Context, operator *domain.Operator) error {
	if operator.ID <= 0 {
		return domain.NewValidationError("id", "must be positive", domain.ErrInvalidID)
	}

	return s.write(func(t *txn) error {
		if _, exists := t.operators.Get(idKey(operator.ID)); exists {
			return fmt.Errorf("%w: %d", store.ErrOperatorExists, operator.ID)
		}
		stored := *operator
		t.operators.Insert(idKey(stored.ID), &stored)
		return nil
	})
}

func (s *operatorStore) GetByID(_ context.Context, id int64) (*domain.Operator, error) {
	op, ok := s.view().operators.Get(idKey(id))
	if !ok {
		return nil, store.ErrOperatorNotFound
	}
	o := *op
	return &o, nil
}
