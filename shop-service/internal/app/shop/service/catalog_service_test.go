package service

import (
	"context"
	"testing"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository"
	"northberries/shop-service/internal/app/shop/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCatalogService() (*CatalogService, *mocks.MockCategoryRepository, *mocks.MockProductRepository, *mocks.MockCartRepository, *mocks.MockWishlistRepository, *mocks.MockLocalizedValueRepository) {
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cartRepo := new(mocks.MockCartRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	valueRepo := new(mocks.MockLocalizedValueRepository)
	localizedValues := NewLocalizedValueService(valueRepo, []string{"en", "ru"})
	service := NewCatalogService(categoryRepo, productRepo, cartRepo, wishlistRepo, localizedValues, nil)
	return service, categoryRepo, productRepo, cartRepo, wishlistRepo, valueRepo
}

func TestQueryProducts_AnnotatesViewerSets(t *testing.T) {
	service, _, productRepo, cartRepo, wishlistRepo, _ := newCatalogService()

	ctx := context.Background()
	inCartID := primitive.NewObjectID()
	inWishlistID := primitive.NewObjectID()
	plainID := primitive.NewObjectID()
	cartID := primitive.NewObjectID()
	wishlistID := primitive.NewObjectID()

	productRepo.On("Query", ctx, mock.AnythingOfType("*entity.ProductQuery")).Return([]entity.Product{
		{ID: inCartID}, {ID: inWishlistID}, {ID: plainID},
	}, int64(3), nil)
	cartRepo.On("GetByID", ctx, cartID).Return(&entity.Cart{
		ID:    cartID,
		Items: []entity.CartItem{{ID: primitive.NewObjectID(), ProductID: inCartID, Quantity: 2}},
	}, nil)
	wishlistRepo.On("GetByID", ctx, wishlistID).Return(&entity.Wishlist{
		ID:         wishlistID,
		ProductIDs: []primitive.ObjectID{inWishlistID},
	}, nil)

	page, err := service.QueryProducts(ctx, &entity.ProductQuery{
		Page:             1,
		PageSize:         20,
		ViewerCartID:     &cartID,
		ViewerWishlistID: &wishlistID,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalRecords)
	assert.True(t, page.Items[0].InCart)
	assert.False(t, page.Items[0].InWishlist)
	assert.True(t, page.Items[1].InWishlist)
	assert.False(t, page.Items[1].InCart)
	assert.False(t, page.Items[2].InCart)
	assert.False(t, page.Items[2].InWishlist)
}

func TestQueryProducts_NoViewer_AnnotationsFalse(t *testing.T) {
	service, _, productRepo, cartRepo, wishlistRepo, _ := newCatalogService()

	ctx := context.Background()
	productRepo.On("Query", ctx, mock.Anything).Return([]entity.Product{{ID: primitive.NewObjectID()}}, int64(1), nil)

	page, err := service.QueryProducts(ctx, &entity.ProductQuery{Page: 1, PageSize: 10})

	assert.NoError(t, err)
	assert.False(t, page.Items[0].InCart)
	assert.False(t, page.Items[0].InWishlist)
	cartRepo.AssertNotCalled(t, "GetByID")
	wishlistRepo.AssertNotCalled(t, "GetByID")
}

func TestQueryProducts_NormalizesPagination(t *testing.T) {
	service, _, productRepo, _, _, _ := newCatalogService()

	ctx := context.Background()
	productRepo.On("Query", ctx, mock.MatchedBy(func(q *entity.ProductQuery) bool {
		return q.Page == 1 && q.PageSize == defaultPageSize && q.Sort == entity.SortNewest
	})).Return([]entity.Product{}, int64(0), nil)

	page, err := service.QueryProducts(ctx, &entity.ProductQuery{Page: 0, PageSize: 0})

	assert.NoError(t, err)
	assert.Empty(t, page.Items)
	productRepo.AssertExpectations(t)
}

func TestQueryProducts_CapsPageSize(t *testing.T) {
	service, _, productRepo, _, _, _ := newCatalogService()

	ctx := context.Background()
	productRepo.On("Query", ctx, mock.MatchedBy(func(q *entity.ProductQuery) bool {
		return q.PageSize == maxPageSize
	})).Return([]entity.Product{}, int64(0), nil)

	_, err := service.QueryProducts(ctx, &entity.ProductQuery{Page: 1, PageSize: 1000})

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
}

func TestQueryProducts_DeletedViewerCartTreatedAsEmpty(t *testing.T) {
	service, _, productRepo, cartRepo, _, _ := newCatalogService()

	ctx := context.Background()
	cartID := primitive.NewObjectID()
	productRepo.On("Query", ctx, mock.Anything).Return([]entity.Product{{ID: primitive.NewObjectID()}}, int64(1), nil)
	cartRepo.On("GetByID", ctx, cartID).Return(nil, repository.ErrCartNotFound)

	page, err := service.QueryProducts(ctx, &entity.ProductQuery{Page: 1, PageSize: 10, ViewerCartID: &cartID})

	assert.NoError(t, err)
	assert.False(t, page.Items[0].InCart)
}

func TestListCategories_ResolvesNamesForLanguage(t *testing.T) {
	service, categoryRepo, _, _, _, valueRepo := newCatalogService()

	ctx := context.Background()
	valueID := primitive.NewObjectID()
	category := entity.Category{ID: primitive.NewObjectID(), ValueIDs: []primitive.ObjectID{valueID}}

	categoryRepo.On("GetAll", ctx).Return([]entity.Category{category}, nil)
	valueRepo.On("GetByIDs", ctx, category.ValueIDs).Return([]entity.LocalizedValue{
		{ID: valueID, LanguageCode: "ru", Text: "Фрукты"},
	}, nil)

	views, err := service.ListCategories(ctx, "ru")

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "Фрукты", views[0].Name)
}

func TestListCategories_MissingValueDegradesToEmptyName(t *testing.T) {
	service, categoryRepo, _, _, _, valueRepo := newCatalogService()

	ctx := context.Background()
	category := entity.Category{ID: primitive.NewObjectID(), ValueIDs: []primitive.ObjectID{primitive.NewObjectID()}}

	categoryRepo.On("GetAll", ctx).Return([]entity.Category{category}, nil)
	valueRepo.On("GetByIDs", ctx, category.ValueIDs).Return([]entity.LocalizedValue{}, nil)

	views, err := service.ListCategories(ctx, "en")

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Empty(t, views[0].Name)
}

func TestListCategories_UnsupportedLanguage(t *testing.T) {
	service, categoryRepo, _, _, _, _ := newCatalogService()

	views, err := service.ListCategories(context.Background(), "fr")

	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Nil(t, views)
	categoryRepo.AssertNotCalled(t, "GetAll")
}

func TestFeaturedGroups_SortedByResolvedName(t *testing.T) {
	service, categoryRepo, productRepo, _, _, valueRepo := newCatalogService()

	ctx := context.Background()
	fruitsID := primitive.NewObjectID()
	berriesID := primitive.NewObjectID()
	fruitsValue := primitive.NewObjectID()
	berriesValue := primitive.NewObjectID()

	productRepo.On("FeaturedByCategory", ctx, 4).Return([]entity.FeaturedGroup{
		{CategoryID: fruitsID, Products: []entity.Product{{ID: primitive.NewObjectID()}}},
		{CategoryID: berriesID, Products: []entity.Product{{ID: primitive.NewObjectID()}}},
	}, nil)
	categoryRepo.On("GetByID", ctx, fruitsID).Return(&entity.Category{ID: fruitsID, ValueIDs: []primitive.ObjectID{fruitsValue}}, nil)
	categoryRepo.On("GetByID", ctx, berriesID).Return(&entity.Category{ID: berriesID, ValueIDs: []primitive.ObjectID{berriesValue}}, nil)
	valueRepo.On("GetByIDs", ctx, []primitive.ObjectID{fruitsValue}).Return([]entity.LocalizedValue{
		{ID: fruitsValue, LanguageCode: "en", Text: "Fruits"},
	}, nil)
	valueRepo.On("GetByIDs", ctx, []primitive.ObjectID{berriesValue}).Return([]entity.LocalizedValue{
		{ID: berriesValue, LanguageCode: "en", Text: "Berries"},
	}, nil)

	groups, err := service.FeaturedGroups(ctx, "en", 4)

	assert.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, "Berries", groups[0].CategoryName)
	assert.Equal(t, "Fruits", groups[1].CategoryName)
}

func TestCreateCategory_BackfillsAllSupportedLanguages(t *testing.T) {
	service, categoryRepo, _, _, _, valueRepo := newCatalogService()

	ctx := context.Background()
	created := make([]entity.LocalizedValue, 0, 2)

	valueRepo.On("Create", ctx, mock.AnythingOfType("*entity.LocalizedValue")).Return(nil).Run(func(args mock.Arguments) {
		created = append(created, *args.Get(1).(*entity.LocalizedValue))
	})
	categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)

	category, err := service.CreateCategory(ctx, &entity.CreateCategoryRequest{
		Names:    map[string]string{"en": "Fruits"},
		Featured: true,
	})

	assert.NoError(t, err)
	assert.Len(t, category.ValueIDs, 2)
	assert.Len(t, created, 2)
	assert.True(t, category.Featured)
}

func TestUpdateCategory_AppendsNewLanguageValue(t *testing.T) {
	service, categoryRepo, _, _, _, valueRepo := newCatalogService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	enValue := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, ValueIDs: []primitive.ObjectID{enValue}}

	categoryRepo.On("GetByID", ctx, categoryID).Return(category, nil)
	valueRepo.On("GetByIDs", ctx, mock.Anything).Return([]entity.LocalizedValue{
		{ID: enValue, LanguageCode: "en", Text: "Fruits"},
	}, nil)
	valueRepo.On("Create", ctx, mock.AnythingOfType("*entity.LocalizedValue")).Return(nil)
	categoryRepo.On("AppendValueID", ctx, categoryID, mock.AnythingOfType("primitive.ObjectID")).Return(nil)
	categoryRepo.On("Update", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)

	updated, err := service.UpdateCategory(ctx, categoryID.Hex(), &entity.UpdateCategoryRequest{
		Names: map[string]string{"ru": "Фрукты"},
	})

	assert.NoError(t, err)
	assert.Len(t, updated.ValueIDs, 2)
	categoryRepo.AssertCalled(t, "AppendValueID", ctx, categoryID, mock.Anything)
}

func TestDeleteCategory_RefusedWhileInUse(t *testing.T) {
	service, categoryRepo, productRepo, _, _, _ := newCatalogService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()

	categoryRepo.On("GetByID", ctx, categoryID).Return(&entity.Category{ID: categoryID}, nil)
	productRepo.On("CountByCategory", ctx, categoryID).Return(int64(3), nil)

	err := service.DeleteCategory(ctx, categoryID.Hex())

	assert.ErrorIs(t, err, ErrCategoryInUse)
	categoryRepo.AssertNotCalled(t, "Delete")
}

func TestDeleteCategory_CascadesLocalizedValues(t *testing.T) {
	service, categoryRepo, productRepo, _, _, valueRepo := newCatalogService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	valueIDs := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	categoryRepo.On("GetByID", ctx, categoryID).Return(&entity.Category{ID: categoryID, ValueIDs: valueIDs}, nil)
	productRepo.On("CountByCategory", ctx, categoryID).Return(int64(0), nil)
	valueRepo.On("DeleteByIDs", ctx, valueIDs).Return(nil)
	categoryRepo.On("Delete", ctx, categoryID).Return(nil)

	err := service.DeleteCategory(ctx, categoryID.Hex())

	assert.NoError(t, err)
	valueRepo.AssertCalled(t, "DeleteByIDs", ctx, valueIDs)
}

func TestCreateProduct_ZeroQuantityMarkedSoldOut(t *testing.T) {
	service, categoryRepo, productRepo, _, _, _ := newCatalogService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()

	categoryRepo.On("GetByID", ctx, categoryID).Return(&entity.Category{ID: categoryID}, nil)
	productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	product, err := service.CreateProduct(ctx, &entity.CreateProductRequest{
		Name:        "Клубника",
		CategoryIDs: []string{categoryID.Hex()},
		Price:       4.5,
		Quantity:    0,
	})

	assert.NoError(t, err)
	assert.True(t, product.SoldOut)
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	service, categoryRepo, productRepo, _, _, _ := newCatalogService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()

	categoryRepo.On("GetByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	product, err := service.CreateProduct(ctx, &entity.CreateProductRequest{
		Name:        "Клубника",
		CategoryIDs: []string{categoryID.Hex()},
		Price:       4.5,
		Quantity:    10,
	})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, product)
	productRepo.AssertNotCalled(t, "Create")
}
