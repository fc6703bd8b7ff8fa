package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(OpenIDFromCode(" abc "), "", "", 10)
	require.NoError(t, err)
	assert.Equal(t, "openid_abc", user.OpenID)
	assert.Equal(t, 10, user.Points)

	_, err = NewUser(OpenIDFromCode(""), "", "", 10)
	assert.ErrorIs(t, err, ErrEmptyOpenID)

	_, err = NewUser("openid_x", "", "", -1)
	assert.ErrorIs(t, err, ErrNegativePoints)
}

func TestNewGalleryItem(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	_, err := NewGalleryItem(task)
	assert.ErrorIs(t, err, ErrEmptyGalleryImageURL)

	task.ResultURL = "http://x/r.jpg"
	task.ThumbnailURL = "http://x/t.jpg"
	item, err := NewGalleryItem(task)
	require.NoError(t, err)
	assert.Equal(t, task.ID, item.TaskID)
	assert.Equal(t, task.UserID, item.UserID)
	assert.Equal(t, task.PhotoURL, item.OriginalURL)
	assert.Equal(t, task.Prompt, item.Prompt)
}
