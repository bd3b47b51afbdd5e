package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoadAllDropsSoftDeletedLeads(t *testing.T) {
	backend := new(MockBackend)
	page := append(leadPage("a", 7), deletedLead("d-1"), deletedLead("d-2"))
	backend.On("ListLeads", mock.Anything, 100, 0).Return(page, nil).Once()

	dir := NewLeadDirectory(backend, DirectoryOptions{})
	leads, err := dir.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, leads, 7)
	assert.Len(t, dir.Snapshot(), 7)
	for _, l := range dir.Snapshot() {
		assert.False(t, l.IsDeleted())
	}
	assert.True(t, dir.Loaded())
	assert.NoError(t, dir.Err())
	backend.AssertExpectations(t)
}

func TestLoadAllPagesUntilShortPage(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListLeads", mock.Anything, 100, 0).Return(leadPage("p0", 100), nil).Once()
	backend.On("ListLeads", mock.Anything, 100, 100).Return(leadPage("p1", 100), nil).Once()
	backend.On("ListLeads", mock.Anything, 100, 200).Return(leadPage("p2", 30), nil).Once()

	dir := NewLeadDirectory(backend, DirectoryOptions{})
	leads, err := dir.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, leads, 230)
	assert.Equal(t, "p0-0", leads[0].ID)
	assert.Equal(t, "p2-29", leads[229].ID)
	backend.AssertExpectations(t)
}

func TestLoadAllStopsOnEmptyPage(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListLeads", mock.Anything, 3, 0).Return(leadPage("p0", 3), nil).Once()
	backend.On("ListLeads", mock.Anything, 3, 3).Return([]entity.Lead{}, nil).Once()

	dir := NewLeadDirectory(backend, DirectoryOptions{PageSize: 3})
	leads, err := dir.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, leads, 3)
	backend.AssertExpectations(t)
}

func TestLoadAllFailureEmptiesStore(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListLeads", mock.Anything, 2, 0).Return(leadPage("ok", 1), nil).Once()

	dir := NewLeadDirectory(backend, DirectoryOptions{PageSize: 2})
	_, err := dir.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, dir.Snapshot(), 1)

	backend.On("ListLeads", mock.Anything, 2, 0).Return(leadPage("p0", 2), nil).Once()
	backend.On("ListLeads", mock.Anything, 2, 2).Return(nil, &httpError{status: 503, message: "unavailable"}).Once()

	leads, err := dir.LoadAll(context.Background())

	assert.Nil(t, leads)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "leads", fetchErr.Resource)
	assert.Empty(t, dir.Snapshot())
	assert.Equal(t, err, dir.Err())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
	backend.AssertExpectations(t)
}

func TestLoadAllUnauthorizedIsDetectable(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListLeads", mock.Anything, 100, 0).Return(nil, &httpError{status: 401, message: "expired"}).Once()

	dir := NewLeadDirectory(backend, DirectoryOptions{})
	_, err := dir.LoadAll(context.Background())

	assert.True(t, IsUnauthorized(err))
}

func TestStaleGenerationCannotCommit(t *testing.T) {
	var c collection[entity.Lead]

	first := c.begin()
	second := c.begin()

	assert.False(t, c.commit(first, leadPage("old", 2), nil))
	assert.True(t, c.commit(second, leadPage("new", 1), nil))
	assert.Equal(t, "new-0", c.snapshot()[0].ID)
}

func TestApplyPatchAndRemove(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListLeads", mock.Anything, 100, 0).Return(leadPage("a", 3), nil).Once()

	dir := NewLeadDirectory(backend, DirectoryOptions{})
	_, err := dir.LoadAll(context.Background())
	require.NoError(t, err)
	before := dir.Snapshot()

	patched := testLead("a-1", "Changed", 90)
	assert.True(t, dir.ApplyPatch(patched))
	assert.False(t, dir.ApplyPatch(testLead("missing", "Nobody", 1)))

	after := dir.Snapshot()
	require.Len(t, after, 3)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, "Changed", after[1].Contact.FirstName)
	assert.Equal(t, before[2], after[2])
	assert.Equal(t, "a1", before[1].Contact.FirstName, "earlier snapshots are not mutated")

	dir.Remove("a-0")
	dir.Remove("missing")
	assert.Len(t, dir.Snapshot(), 2)
}

func TestMessageDirectoryUsesTimeout(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListMessages", mock.Anything, 100, 0).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok)
		}).
		Return([]entity.Message{{ID: "m-1", Text: "hi"}}, nil).Once()

	dir := NewMessageDirectory(backend, DirectoryOptions{Timeout: 5 * time.Second})
	messages, err := dir.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, messages, 1)
	backend.AssertExpectations(t)
}

func TestAdminDirectoryFailure(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ListAdmins", mock.Anything, 100, 0).Return(nil, errors.New("connection refused")).Once()

	dir := NewAdminDirectory(backend, DirectoryOptions{})
	_, err := dir.LoadAll(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "admins", fetchErr.Resource)
	assert.True(t, dir.Loaded())
	assert.Empty(t, dir.Snapshot())
}
