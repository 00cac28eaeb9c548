package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kartik-parmar007/marketplace-backend/internal/directory"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  seller_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

type fakeSellerDirectory struct {
	users map[string]*directory.UserDTO
}

func (f *fakeSellerDirectory) FindByExternalID(_ context.Context, externalID string) (*directory.UserDTO, error) {
	user, ok := f.users[externalID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (f *fakeSellerDirectory) Role(_ context.Context, externalID string) (enums.Role, error) {
	user, ok := f.users[externalID]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no role assigned")
	}
	return user.Role, nil
}

func sellerDir(ids ...string) *fakeSellerDirectory {
	users := make(map[string]*directory.UserDTO, len(ids))
	for _, id := range ids {
		users[id] = &directory.UserDTO{ExternalID: id, Email: id + "@example.com", Role: enums.RoleSeller}
	}
	return &fakeSellerDirectory{users: users}
}

type fakeMediaRemover struct {
	removed []string
}

func (f *fakeMediaRemover) Remove(publicPath string) error {
	f.removed = append(f.removed, publicPath)
	return nil
}

func newCatalogService(t *testing.T, db *gorm.DB, sellers SellerDirectory) Service {
	t.Helper()
	return newCatalogServiceWithMedia(t, db, sellers, nil)
}

func newCatalogServiceWithMedia(t *testing.T, db *gorm.DB, sellers SellerDirectory, media MediaRemover) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), sellers, media, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func ptr(v string) *string    { return &v }

func mustCreate(t *testing.T, svc Service, sellerID, name string, cents int64) *ProductDTO {
	t.Helper()
	product, err := svc.Create(context.Background(), CreateInput{
		Name:       name,
		PriceCents: int64Ptr(cents),
		SellerID:   sellerID,
	})
	require.NoError(t, err)
	return product
}

func TestCreateRequiresNameAndPrice(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	_, err := svc.Create(context.Background(), CreateInput{SellerID: "seller_1"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Create(context.Background(), CreateInput{
		Name:     "Widget",
		SellerID: "seller_1",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		PriceCents: int64Ptr(100),
		SellerID:   "seller_1",
	})
	require.Error(t, err)
}

func TestCreateDefaultsStockToZero(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	product := mustCreate(t, svc, "seller_1", "Widget", 999)
	require.Equal(t, 0, product.Stock)
	require.Equal(t, "9.99", product.Price)
	require.NotEqual(t, uuid.Nil, product.ID)
}

func TestCreateRejectsUnknownSeller(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "Widget",
		PriceCents: int64Ptr(100),
		SellerID:   "ghost",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Contains(t, err.Error(), "seller account not found")
}

func TestCreateRejectsNonSellerOwner(t *testing.T) {
	dir := sellerDir()
	dir.users["buyer_1"] = &directory.UserDTO{ExternalID: "buyer_1", Role: enums.RoleBuyer}
	svc := newCatalogService(t, setupCatalogTestDB(t), dir)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "Widget",
		PriceCents: int64Ptr(100),
		SellerID:   "buyer_1",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "seller role required")
}

func TestCreateRejectsNegativeValues(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "Widget",
		PriceCents: int64Ptr(-1),
		SellerID:   "seller_1",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Name:       "Widget",
		PriceCents: int64Ptr(100),
		Stock:      intPtr(-5),
		SellerID:   "seller_1",
	})
	require.Error(t, err)
}

func TestListBySellerFiltersOwnership(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_a", "seller_b"))

	mustCreate(t, svc, "seller_a", "A1", 100)
	mustCreate(t, svc, "seller_a", "A2", 200)
	mustCreate(t, svc, "seller_b", "B1", 300)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := svc.ListBySeller(context.Background(), "seller_a")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		require.Equal(t, "seller_a", p.SellerID)
	}
}

func TestGetDetailJoinsSellerFields(t *testing.T) {
	dir := sellerDir("seller_1")
	dir.users["seller_1"].FirstName = ptr("Grace")
	dir.users["seller_1"].LastName = ptr("Hopper")
	svc := newCatalogService(t, setupCatalogTestDB(t), dir)

	created := mustCreate(t, svc, "seller_1", "Widget", 100)

	detail, err := svc.GetDetail(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Grace Hopper", detail.SellerName)
	require.Equal(t, "seller_1@example.com", detail.SellerEmail)
}

func TestGetDetailFallsBackToSellerID(t *testing.T) {
	dir := sellerDir("seller_1")
	svc := newCatalogService(t, setupCatalogTestDB(t), dir)

	created := mustCreate(t, svc, "seller_1", "Widget", 100)
	delete(dir.users, "seller_1")

	detail, err := svc.GetDetail(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "seller_1", detail.SellerName)
	require.Empty(t, detail.SellerEmail)
}

func TestGetDetailUnknownProduct(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	_, err := svc.GetDetail(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateOwnedAppliesOnlyPresentFields(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	created, err := svc.Create(context.Background(), CreateInput{
		Name:        "Widget",
		Description: ptr("original"),
		PriceCents:  int64Ptr(100),
		Stock:       intPtr(5),
		SellerID:    "seller_1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{
		PriceCents: int64Ptr(250),
	})
	require.NoError(t, err)
	require.Equal(t, int64(250), updated.PriceCents)
	require.Equal(t, "Widget", updated.Name)
	require.NotNil(t, updated.Description)
	require.Equal(t, "original", *updated.Description)
	require.Equal(t, 5, updated.Stock)
}

func TestUpdateClearsDescriptionOnExplicitEmpty(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	created, err := svc.Create(context.Background(), CreateInput{
		Name:        "Widget",
		Description: ptr("original"),
		PriceCents:  int64Ptr(100),
		SellerID:    "seller_1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{
		Description: ptr(""),
	})
	require.NoError(t, err)
	require.Nil(t, updated.Description)
}

func TestUpdateOwnedEnforcesOwnership(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_a", "seller_b"))

	created := mustCreate(t, svc, "seller_a", "Widget", 100)

	_, err := svc.UpdateOwned(context.Background(), "seller_b", created.ID, UpdateInput{
		Name: ptr("Stolen"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestUpdateOwnedUnknownProductIsNotFoundNotForbidden(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_a"))

	_, err := svc.UpdateOwned(context.Background(), "seller_a", uuid.New(), UpdateInput{
		Name: ptr("Ghost"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	created := mustCreate(t, svc, "seller_1", "Widget", 100)

	_, err := svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{Name: ptr("  ")})
	require.Error(t, err)

	_, err = svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{PriceCents: int64Ptr(-1)})
	require.Error(t, err)

	_, err = svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{Stock: intPtr(-1)})
	require.Error(t, err)
}

func TestUpdateRejectsEmptyInput(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_1"))

	created := mustCreate(t, svc, "seller_1", "Widget", 100)

	_, err := svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{})
	require.Error(t, err)
}

func TestUpdateReplacingImageRemovesOldFile(t *testing.T) {
	media := &fakeMediaRemover{}
	svc := newCatalogServiceWithMedia(t, setupCatalogTestDB(t), sellerDir("seller_1"), media)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:       "Widget",
		PriceCents: int64Ptr(100),
		ImageURL:   ptr("/uploads/old.png"),
		SellerID:   "seller_1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{
		ImageURL: ptr("/uploads/new.png"),
	})
	require.NoError(t, err)
	require.Equal(t, "/uploads/new.png", *updated.ImageURL)
	require.Equal(t, []string{"/uploads/old.png"}, media.removed)

	// Re-sending the same path must not remove the live file.
	_, err = svc.UpdateOwned(context.Background(), "seller_1", created.ID, UpdateInput{
		ImageURL: ptr("/uploads/new.png"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/uploads/old.png"}, media.removed)
}

func TestDeleteRemovesStoredImage(t *testing.T) {
	media := &fakeMediaRemover{}
	svc := newCatalogServiceWithMedia(t, setupCatalogTestDB(t), sellerDir("seller_1"), media)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:       "Widget",
		PriceCents: int64Ptr(100),
		ImageURL:   ptr("/uploads/photo.png"),
		SellerID:   "seller_1",
	})
	require.NoError(t, err)

	snapshot, err := svc.DeleteOwned(context.Background(), "seller_1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot.ImageURL)
	require.Equal(t, []string{"/uploads/photo.png"}, media.removed)
}

func TestAdminUpdateBypassesOwnership(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_a"))

	created := mustCreate(t, svc, "seller_a", "Widget", 100)

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Name: ptr("Moderated")})
	require.NoError(t, err)
	require.Equal(t, "Moderated", updated.Name)
	require.Equal(t, "seller_a", updated.SellerID)
}

func TestDeleteOwnedReturnsSnapshot(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_a", "seller_b"))

	created := mustCreate(t, svc, "seller_a", "Widget", 100)

	_, err := svc.DeleteOwned(context.Background(), "seller_b", created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	snapshot, err := svc.DeleteOwned(context.Background(), "seller_a", created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, snapshot.ID)
	require.Equal(t, "Widget", snapshot.Name)

	_, err = svc.GetDetail(context.Background(), created.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAdminDeleteBypassesOwnership(t *testing.T) {
	svc := newCatalogService(t, setupCatalogTestDB(t), sellerDir("seller_a"))

	created := mustCreate(t, svc, "seller_a", "Widget", 100)

	snapshot, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, snapshot.ID)
}
