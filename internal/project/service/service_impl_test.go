package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sds-studio/sds/internal/catalog"
	"github.com/sds-studio/sds/internal/project/domain"
	"github.com/sds-studio/sds/internal/project/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.Task{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func createRequest() domain.CreateRequest {
	return domain.CreateRequest{
		Title:     "Refonte du site vitrine",
		ContactID: snowflake.ID(101),
		OwnerID:   snowflake.ID(1),
		Type:      catalog.ProjectTypeVitrine,
		Budget:    149000,
	}
}

func TestCreate_SeedsDefaultTasks(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	assert.Equal(t, "refonte-du-site-vitrine", project.Slug)
	assert.Equal(t, domain.StatusPending, project.Status)
	require.NotNil(t, project.StartDate)

	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	assert.Equal(t, "Analyse des besoins", tasks[0].Title)
	for _, task := range tasks {
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
	}
}

func TestCreate_EcommerceGetsBiggerDevEstimate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := createRequest()
	req.Type = catalog.ProjectTypeEcommerce
	project, err := svc.Create(ctx, req)
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	var dev *domain.Task
	for i := range tasks {
		if tasks[i].Title == "Developpement" {
			dev = &tasks[i]
		}
	}
	require.NotNil(t, dev)
	assert.Equal(t, 24, dev.EstimatedHours)
}

func TestCreate_SecondProjectForContactConflicts(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	req := createRequest()
	req.Title = "Deuxieme projet"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrContactHasOwner)

	var projects int64
	require.NoError(t, db.Model(&domain.Project{}).Count(&projects).Error)
	assert.EqualValues(t, 1, projects)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := createRequest()
	req.Title = "   "
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	req = createRequest()
	req.ContactID = 0
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidContact)

	req = createRequest()
	req.OwnerID = 0
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestUpsertFromPayment_IsIdempotentPerContact(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	req := domain.UpsertFromPaymentRequest{
		ContactID:  snowflake.ID(202),
		OwnerID:    snowflake.ID(1),
		PackageID:  "professionnel",
		ClientName: "Claire Morel",
		ChargeRef:  "charge_abc",
		Budget:     249000,
	}

	first, err := svc.UpsertFromPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Projet Professionnel - Claire Morel", first.Title)
	assert.Equal(t, catalog.ProjectTypeProfessionnel, first.Type)
	assert.Equal(t, 14, first.TimelineDays)

	req.ChargeRef = "charge_def"
	second, err := svc.UpsertFromPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&domain.Project{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertFromPayment_NoDefaultTasks(t *testing.T) {
	svc, db := newService(t)

	project, err := svc.UpsertFromPayment(context.Background(), domain.UpsertFromPaymentRequest{
		ContactID:  snowflake.ID(203),
		OwnerID:    snowflake.ID(1),
		PackageID:  "essentiel",
		ClientName: "Paul",
		Budget:     149000,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Task{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	title := "Boutique en ligne"
	status := domain.StatusInProgress
	url := " https://client.example.com "
	updated, err := svc.Update(ctx, project.ID, domain.UpdateRequest{
		Title:         &title,
		Status:        &status,
		ProductionURL: &url,
	})
	require.NoError(t, err)
	assert.Equal(t, "Boutique en ligne", updated.Title)
	assert.Equal(t, "boutique-en-ligne", updated.Slug)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "https://client.example.com", updated.ProductionURL)

	bad := "NOPE"
	_, err = svc.Update(ctx, project.ID, domain.UpdateRequest{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Update(ctx, snowflake.ID(999999), domain.UpdateRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_RemovesTasksToo(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, project.ID))

	var tasks int64
	require.NoError(t, db.Model(&domain.Task{}).Count(&tasks).Error)
	assert.EqualValues(t, 0, tasks)

	assert.ErrorIs(t, svc.Delete(ctx, project.ID), domain.ErrNotFound)
}

func TestList_PublicOnlyShowsDelivered(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	pending, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	req := createRequest()
	req.Title = "Site livre"
	req.ContactID = snowflake.ID(102)
	delivered, err := svc.Create(ctx, req)
	require.NoError(t, err)
	status := domain.StatusDelivered
	_, err = svc.Update(ctx, delivered.ID, domain.UpdateRequest{Status: &status})
	require.NoError(t, err)

	public, total, err := svc.List(ctx, domain.ListRequest{PublicOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, public, 1)
	assert.Equal(t, delivered.ID, public[0].ID)

	all, total, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
	_ = pending

	_, _, err = svc.List(ctx, domain.ListRequest{Status: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateTask(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)

	done := domain.TaskStatusDone
	hours := 12
	task, err := svc.UpdateTask(ctx, tasks[0].ID, domain.UpdateTaskRequest{Status: &done, EstimatedHours: &hours})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, task.Status)
	assert.Equal(t, 12, task.EstimatedHours)

	bad := "NOPE"
	_, err = svc.UpdateTask(ctx, tasks[0].ID, domain.UpdateTaskRequest{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateTask(ctx, snowflake.ID(999999), domain.UpdateTaskRequest{Status: &done})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
