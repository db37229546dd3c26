package repository

import (
	"context"
	"sync"
	"testing"

	"medley/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListApprovedFiltersAndOrders(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "lister")

	createTestMedia(t, h, user.ID, "https://cdn.example.com/a.jpg", true)
	createTestMedia(t, h, user.ID, "https://cdn.example.com/b.jpg", false)
	createTestMedia(t, h, user.ID, "https://cdn.example.com/c.jpg", true)

	items, err := repo.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Newest first; same timestamp resolution falls back to id DESC.
	assert.Equal(t, "https://cdn.example.com/c.jpg", items[0].URL)
	assert.Equal(t, "https://cdn.example.com/a.jpg", items[1].URL)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListIncludesCategoryName(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "categorized")

	catID, err := repo.EnsureCategory(ctx, "Photos")
	require.NoError(t, err)

	media := createTestMedia(t, h, user.ID, "https://cdn.example.com/cat.jpg", true)
	db, err := h.Get()
	require.NoError(t, err)
	require.NoError(t, db.Model(media).Update("category_id", catID).Error)
	createTestMedia(t, h, user.ID, "https://cdn.example.com/nocat.jpg", true)

	items, err := repo.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Nil(t, items[0].Category)
	require.NotNil(t, items[1].Category)
	assert.Equal(t, "Photos", *items[1].Category)
}

func TestEnsureCategoryIsIdempotent(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()

	first, err := repo.EnsureCategory(ctx, "Nature")
	require.NoError(t, err)
	second, err := repo.EnsureCategory(ctx, "Nature")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := repo.EnsureCategory(ctx, "Travel")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestRemoveSamples(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "sampler")

	createTestMedia(t, h, user.ID, "https://cdn.example.com/sample-1.jpg", true)
	createTestMedia(t, h, user.ID, "https://cdn.example.com/real.jpg", true)
	createTestMedia(t, h, user.ID, "https://other.example.com/sample.png", true)

	removed, err := repo.RemoveSamples(ctx, "%sample%")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://cdn.example.com/real.jpg", items[0].URL)
}

func TestRemoveDuplicatesKeepsNewestRow(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "duper")

	createTestMedia(t, h, user.ID, "https://cdn.example.com/dup.jpg", true)
	createTestMedia(t, h, user.ID, "https://cdn.example.com/dup.jpg", true)
	keeper := createTestMedia(t, h, user.ID, "https://cdn.example.com/dup.jpg", true)
	unique := createTestMedia(t, h, user.ID, "https://cdn.example.com/unique.jpg", true)

	removed, err := repo.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []uint{items[0].ID, items[1].ID}
	assert.Contains(t, ids, keeper.ID)
	assert.Contains(t, ids, unique.ID)
}

func TestClear(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "clearer")

	createTestMedia(t, h, user.ID, "https://cdn.example.com/1.jpg", true)
	createTestMedia(t, h, user.ID, "https://cdn.example.com/2.jpg", false)

	removed, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestToggleLike(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "liker")
	media := createTestMedia(t, h, user.ID, "https://cdn.example.com/liked.jpg", true)

	liked, err := repo.ToggleLike(ctx, media.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := repo.GetByID(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)

	ids, err := repo.LikedMediaIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{media.ID}, ids)

	liked, err = repo.ToggleLike(ctx, media.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = repo.GetByID(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)

	ids, err = repo.LikedMediaIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleLikeCounterMatchesMembership(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()

	owner := createTestUser(t, h, "owner")
	media := createTestMedia(t, h, owner.ID, "https://cdn.example.com/popular.jpg", true)

	users := make([]*models.User, 5)
	for i := range users {
		users[i] = createTestUser(t, h, "fan"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := repo.ToggleLike(ctx, media.ID, userID)
			assert.NoError(t, err)
		}(u.ID)
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, len(users), got.Likes)

	db, err := h.Get()
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.Like{}).Where("media_id = ?", media.ID).Count(&count).Error)
	assert.Equal(t, int64(len(users)), count)
}

func TestDeleteMedia(t *testing.T) {
	h := testHandle(t)
	repo := NewMediaRepository(h)
	ctx := context.Background()
	user := createTestUser(t, h, "deleter")
	media := createTestMedia(t, h, user.ID, "https://cdn.example.com/gone.jpg", true)

	rows, err := repo.Delete(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Delete(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}
