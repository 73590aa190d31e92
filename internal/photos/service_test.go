package photos

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mariepujol/vinsisters-backend/internal/testdb"
	"github.com/mariepujol/vinsisters-backend/pkg/enums"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc
}

func TestSetUserPhotoReplaces(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.SetUserPhoto(ctx, userID, "image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, err)

	_, err = svc.SetUserPhoto(ctx, userID, "image/jpeg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)

	photo, err := svc.GetPhoto(ctx, enums.PhotoOwnerUser, userID)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", photo.ContentType)
	require.True(t, bytes.Equal([]byte{0xff, 0xd8, 0xff}, photo.Data))
}

func TestPhotoOwnerKindsAreSeparate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.SetUserPhoto(ctx, id, "image/png", []byte{1})
	require.NoError(t, err)

	// a sisterhood with the same uuid has its own slot
	_, err = svc.GetPhoto(ctx, enums.PhotoOwnerSisterhood, id)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.SetSisterhoodPhoto(ctx, id, "image/png", []byte{2})
	require.NoError(t, err)

	user, err := svc.GetPhoto(ctx, enums.PhotoOwnerUser, id)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, user.Data)
}

func TestSetPhotoValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetUserPhoto(ctx, uuid.New(), "", []byte{1})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.SetUserPhoto(ctx, uuid.New(), "image/png", nil)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.SetUserPhoto(ctx, uuid.New(), "image/png", make([]byte, MaxPhotoBytes+1))
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDeletePhoto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.SetUserPhoto(ctx, userID, "image/png", []byte{1})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePhoto(ctx, enums.PhotoOwnerUser, userID))

	err = svc.DeletePhoto(ctx, enums.PhotoOwnerUser, userID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
