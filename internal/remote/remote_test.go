package remote_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/remote"
	"chaeen-storefront/internal/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_SignInByEmailAndPhone(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	id, err := f.AddPrincipal("owner@example.com", "+919876543210", "s3cret-pass", domain.RoleAdmin)
	require.NoError(t, err)

	sess, err := f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Email: "Owner@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, id, sess.User.ID)
	assert.NotEmpty(t, sess.AccessToken)

	sess2, err := f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Phone: "+919876543210", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEqual(t, sess.AccessToken, sess2.AccessToken)
	assert.Equal(t, 2, f.Sessions.Len())

	user, err := f.Client.Auth.GetUser(ctx, sess.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
}

func TestAuth_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	_, err := f.AddPrincipal("owner@example.com", "", "right", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, remote.ErrInvalidCredentials)

	_, err = f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Email: "nobody@example.com", Password: "right"})
	assert.ErrorIs(t, err, remote.ErrInvalidCredentials)
	assert.Equal(t, "Invalid login credentials", err.Error())

	_, err = f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Password: "right"})
	assert.ErrorIs(t, err, remote.ErrMissingIdentifier)
	assert.Zero(t, f.Sessions.Len())
}

func TestAuth_SignOutAndExpiry(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	_, err := f.AddPrincipal("owner@example.com", "", "pw", domain.RoleUser)
	require.NoError(t, err)

	require.NoError(t, f.Client.Auth.SignOut(ctx, ""))
	require.NoError(t, f.Client.Auth.SignOut(ctx, "unknown-token"))

	sess, err := f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Email: "owner@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, f.Client.Auth.SignOut(ctx, sess.AccessToken))

	user, err := f.Client.Auth.GetUser(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, user)

	sess, err = f.Client.Auth.SignInWithPassword(ctx, remote.Credentials{Email: "owner@example.com", Password: "pw"})
	require.NoError(t, err)
	f.Sessions.Expire()
	user, err = f.Client.Auth.GetUser(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Zero(t, f.Sessions.Len(), "expired session should be purged on lookup")
}

func TestAuth_SignOutPropagatesBackendFailure(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.Sessions.FailDelete = errors.New("connection reset")

	err := f.Client.Auth.SignOut(ctx, "some-token")
	assert.EqualError(t, err, "connection reset")
}

func TestProducts_SelectFilters(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()

	visible, err := f.Client.Products.Insert(ctx, domain.ProductInput{Name: "Visible", IsActive: true, SortOrder: 1})
	require.NoError(t, err)
	hidden, err := f.Client.Products.Insert(ctx, domain.ProductInput{Name: "Hidden", IsActive: false})
	require.NoError(t, err)

	public, err := f.Client.Products.Select(ctx, remote.Filter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, visible.ID, public[0].ID)

	all, err := f.Client.Products.Select(ctx, remote.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, hidden.ID, all[0].ID)

	one, err := f.Client.Products.Select(ctx, remote.Filter{ID: hidden.ID})
	require.NoError(t, err)
	require.Len(t, one, 1)

	none, err := f.Client.Products.Select(ctx, remote.Filter{ID: hidden.ID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, none)

	missing, err := f.Client.Products.Select(ctx, remote.Filter{ID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStorage_UploadAndRemove(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()

	err := f.Client.Storage.Upload(ctx, "product-images", "products/1-a.png", strings.NewReader("img"), remote.UploadOptions{CacheControl: "3600"})
	require.NoError(t, err)
	assert.Equal(t,
		remotetest.PublicURL+"/storage/v1/object/public/product-images/products/1-a.png",
		f.Client.Storage.PublicURL("product-images", "products/1-a.png"),
	)

	require.NoError(t, f.Client.Storage.Remove(ctx, "product-images", []string{"products/1-a.png"}))
	assert.Zero(t, f.Objects.Len())
}
