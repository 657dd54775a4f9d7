package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"todoapi/internal/adapter/database/memory"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
	. "todoapi/pkg/test"
)

type TodoServiceTestSuite struct {
	suite.Suite
	Service *service.TodoService
	Repo    *memory.TodoRepository
}

func (s *TodoServiceTestSuite) SetupTest() {
	s.Repo = memory.NewTodoRepository(nil)
	s.Service = service.NewTodoService(s.Repo, nil, domain.OwnershipStrict)
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoServiceTestSuite))
}

func (s *TodoServiceTestSuite) TestService_Create_BindsOwnerFromIdentity() {
	todo, err := s.Service.Create(context.Background(), NewIdentity("uid-1"), domain.TodoInput{Title: "Buy milk"})

	Expect(err).To(BeNil())
	Expect(todo.ID).NotTo(BeEmpty())
	Expect(todo.Title).To(Equal("Buy milk"))
	Expect(todo.OwnerID).To(Equal("uid-1"))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.CreatedAt.IsZero()).To(BeFalse())
}

func (s *TodoServiceTestSuite) TestService_Create_EmptyTitle() {
	_, err := s.Service.Create(context.Background(), NewIdentity("uid-1"), domain.TodoInput{Description: "no title"})

	Expect(errors.Is(err, domain.ErrTitleRequired)).To(BeTrue())

	todos, _ := s.Repo.ListByOwner(context.Background(), "uid-1")
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_Create_Unauthenticated() {
	_, err := s.Service.Create(context.Background(), domain.Identity{}, domain.TodoInput{Title: "Buy milk"})

	Expect(errors.Is(err, domain.ErrUnauthenticated)).To(BeTrue())
}

func (s *TodoServiceTestSuite) TestService_List_OnlyOwnedTodos() {
	ctx := context.Background()

	first, _ := s.Service.Create(ctx, NewIdentity("uid-1"), domain.TodoInput{Title: "First"})
	s.Service.Create(ctx, NewIdentity("uid-2"), domain.TodoInput{Title: "Not mine"})
	second, _ := s.Service.Create(ctx, NewIdentity("uid-1"), domain.TodoInput{Title: "Second"})

	todos, err := s.Service.List(ctx, NewIdentity("uid-1"))

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].ID).To(Equal(first.ID))
	Expect(todos[1].ID).To(Equal(second.ID))

	for _, todo := range todos {
		assert.Equal(s.T(), "uid-1", todo.OwnerID)
	}
}

func (s *TodoServiceTestSuite) TestService_List_EmptyIsNotNil() {
	todos, err := s.Service.List(context.Background(), NewIdentity("uid-3"))

	Expect(err).To(BeNil())
	Expect(todos).NotTo(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_Update_OverwritesFields() {
	ctx := context.Background()
	owner := NewIdentity("uid-1")

	created, _ := s.Service.Create(ctx, owner, domain.TodoInput{Title: "Buy milk", Description: "2 liters"})

	updated, err := s.Service.Update(ctx, owner, created.ID, domain.TodoInput{Title: "Buy oat milk"})

	Expect(err).To(BeNil())
	Expect(updated.ID).To(Equal(created.ID))
	Expect(updated.Title).To(Equal("Buy oat milk"))
	Expect(updated.Description).To(BeEmpty())
	Expect(updated.OwnerID).To(Equal(created.OwnerID))
	Expect(updated.CreatedAt).To(Equal(created.CreatedAt))
	Expect(updated.Completed).To(BeFalse())
}

func (s *TodoServiceTestSuite) TestService_Update_NotFound() {
	_, err := s.Service.Update(context.Background(), NewIdentity("uid-1"), "missing", domain.TodoInput{Title: "x"})

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
}

func (s *TodoServiceTestSuite) TestService_Update_OtherOwnerIsNotFound() {
	ctx := context.Background()

	created, _ := s.Service.Create(ctx, NewIdentity("uid-1"), domain.TodoInput{Title: "Mine"})

	_, err := s.Service.Update(ctx, NewIdentity("uid-2"), created.ID, domain.TodoInput{Title: "Stolen"})

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())

	todos, _ := s.Service.List(ctx, NewIdentity("uid-1"))
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("Mine"))
}

func (s *TodoServiceTestSuite) TestService_Delete_RemovesTodo() {
	ctx := context.Background()
	owner := NewIdentity("uid-1")

	created, _ := s.Service.Create(ctx, owner, domain.TodoInput{Title: "Buy milk"})

	Expect(s.Service.Delete(ctx, owner, created.ID)).To(Succeed())

	todos, _ := s.Service.List(ctx, owner)
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_Delete_MissingSucceeds() {
	Expect(s.Service.Delete(context.Background(), NewIdentity("uid-1"), "missing")).To(Succeed())
	Expect(s.Service.Delete(context.Background(), NewIdentity("uid-1"), "")).To(Succeed())
}

func (s *TodoServiceTestSuite) TestService_Delete_OtherOwnerKeepsTodo() {
	ctx := context.Background()

	created, _ := s.Service.Create(ctx, NewIdentity("uid-1"), domain.TodoInput{Title: "Mine"})

	Expect(s.Service.Delete(ctx, NewIdentity("uid-2"), created.ID)).To(Succeed())

	todos, _ := s.Service.List(ctx, NewIdentity("uid-1"))
	Expect(todos).To(HaveLen(1))
}

func TestTodoService_LegacyOwnership(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	svc := service.NewTodoService(memory.NewTodoRepository(nil), nil, domain.OwnershipLegacy)

	created, _ := svc.Create(ctx, NewIdentity("uid-1"), domain.TodoInput{Title: "Shared"})

	updated, err := svc.Update(ctx, NewIdentity("uid-2"), created.ID, domain.TodoInput{Title: "Changed"})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("Changed"))
	Expect(updated.OwnerID).To(Equal("uid-1"))

	Expect(svc.Delete(ctx, NewIdentity("uid-2"), created.ID)).To(Succeed())

	todos, _ := svc.List(ctx, NewIdentity("uid-1"))
	Expect(todos).To(BeEmpty())
}

func TestTodoService_DefaultsToStrictPolicy(t *testing.T) {
	svc := service.NewTodoService(memory.NewTodoRepository(nil), nil, "")

	assert.Equal(t, domain.OwnershipStrict, svc.Policy())
}

func TestService_Update_MissingTodoIsNotAFault(t *testing.T) {
	RegisterTestingT(t)

	core, logs := observer.New(zap.DebugLevel)
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(registry)
	probe := telemetry.NewOTELProbe(zap.New(core), metrics)
	svc := service.NewTodoService(memory.NewTodoRepository(probe), probe, domain.OwnershipStrict)

	_, err := svc.Update(context.Background(), NewIdentity("uid-1"), "missing-id", domain.TodoInput{Title: "x"})

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
	Expect(logs.FilterLevelExact(zap.ErrorLevel).Len()).To(Equal(0))
	Expect(logs.FilterLevelExact(zap.WarnLevel).Len()).To(Equal(0))
	Expect(logs.FilterMessage("Repository record not found").Len()).To(Equal(1))

	expected := `
# HELP database_operations_total Total number of database operations
# TYPE database_operations_total counter
database_operations_total{entity="todo",operation="Update",result="not_found"} 1
`
	Expect(testutil.GatherAndCompare(registry, strings.NewReader(expected), "database_operations_total")).To(Succeed())
}
