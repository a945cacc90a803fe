package utils

import (
	"errors"
	"testing"

	"lms/database"
	"lms/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSlugifyTransliterates(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Learning Go Fast", "learning-go-fast"},
		{"  Study   Tips!  ", "study-tips"},
		{"Café Déjà Vu", "cafe-deja-vu"},
		{"Ünïcode Über Guide", "unicode-uber-guide"},
		{"Привет мир", "privet-mir"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), tc.in)
	}
	assert.Empty(t, Slugify("   "))
}

func TestIsDuplicateKeyError(t *testing.T) {
	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	require.NoError(t, db.Create(&models.User{Username: "ada", Email: "ada@example.com", Password: "x"}).Error)
	err = db.Create(&models.User{Username: "ada", Email: "other@example.com", Password: "x"}).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.True(t, IsDuplicateKeyError(err))

	assert.True(t, IsDuplicateKeyError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, IsDuplicateKeyError(gorm.ErrRecordNotFound))
	assert.False(t, IsDuplicateKeyError(nil))
}
