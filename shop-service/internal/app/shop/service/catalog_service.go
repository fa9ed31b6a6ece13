package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"northberries/pkg/logger"
	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository"
	"northberries/shop-service/internal/app/shop/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryInUse    = errors.New("category still referenced by products")
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	categoryCacheTTL = 10 * time.Minute
)

// CatalogService обрабатывает бизнес-логику каталога
// Выборка товаров, витрина по категориям, админский CRUD категорий и товаров
type CatalogService struct {
	categoryRepo    repository.CategoryRepository
	productRepo     repository.ProductRepository
	cartRepo        repository.CartRepository
	wishlistRepo    repository.WishlistRepository
	localizedValues *LocalizedValueService
	cache           *util.RedisClient
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	wishlistRepo repository.WishlistRepository,
	localizedValues *LocalizedValueService,
	cache *util.RedisClient,
) *CatalogService {
	return &CatalogService{
		categoryRepo:    categoryRepo,
		productRepo:     productRepo,
		cartRepo:        cartRepo,
		wishlistRepo:    wishlistRepo,
		localizedValues: localizedValues,
		cache:           cache,
	}
}

// QueryProducts выполняет постраничную выборку каталога
// total считается по отфильтрованному набору до пагинации; аннотации
// in_cart/in_wishlist вычисляются относительно корзины и списка зрителя
func (s *CatalogService) QueryProducts(ctx context.Context, query *entity.ProductQuery) (*entity.ProductPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = defaultPageSize
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}
	if query.Sort == "" {
		query.Sort = entity.SortNewest
	}

	products, total, err := s.productRepo.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	inCart := s.viewerCartProducts(ctx, query.ViewerCartID)
	inWishlist := s.viewerWishlistProducts(ctx, query.ViewerWishlistID)

	items := make([]entity.ProductView, 0, len(products))
	for _, product := range products {
		items = append(items, entity.ProductView{
			Product:    product,
			InCart:     inCart[product.ID],
			InWishlist: inWishlist[product.ID],
		})
	}

	return &entity.ProductPage{
		Items:        items,
		TotalRecords: total,
	}, nil
}

// viewerCartProducts возвращает множество товаров из корзины зрителя
// Отсутствующая или удалённая корзина трактуется как пустая
func (s *CatalogService) viewerCartProducts(ctx context.Context, cartID *primitive.ObjectID) map[primitive.ObjectID]bool {
	if cartID == nil {
		return nil
	}

	cart, err := s.cartRepo.GetByID(ctx, *cartID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			logger.Warn().Err(err).Str("cart_id", cartID.Hex()).Msg("Failed to load viewer cart")
		}
		return nil
	}

	set := make(map[primitive.ObjectID]bool, len(cart.Items))
	for _, item := range cart.Items {
		set[item.ProductID] = true
	}
	return set
}

// viewerWishlistProducts возвращает множество товаров из списка желаний зрителя
func (s *CatalogService) viewerWishlistProducts(ctx context.Context, wishlistID *primitive.ObjectID) map[primitive.ObjectID]bool {
	if wishlistID == nil {
		return nil
	}

	wishlist, err := s.wishlistRepo.GetByID(ctx, *wishlistID)
	if err != nil {
		if !errors.Is(err, repository.ErrWishlistNotFound) {
			logger.Warn().Err(err).Str("wishlist_id", wishlistID.Hex()).Msg("Failed to load viewer wishlist")
		}
		return nil
	}

	set := make(map[primitive.ObjectID]bool, len(wishlist.ProductIDs))
	for _, productID := range wishlist.ProductIDs {
		set[productID] = true
	}
	return set
}

// GetProduct возвращает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrInvalidID
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListCategories возвращает категории с именами для языка запроса
// Результат кешируется в Redis отдельно на каждый язык
func (s *CatalogService) ListCategories(ctx context.Context, languageCode string) ([]entity.CategoryView, error) {
	if !s.localizedValues.IsSupported(languageCode) {
		return nil, ErrUnsupportedLanguage
	}

	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx, languageCode)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read categories cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	views := make([]entity.CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, entity.CategoryView{
			Category: category,
			Name:     s.resolveName(ctx, category.ID, category.ValueIDs, languageCode),
		})
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, languageCode, views, categoryCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to write categories cache")
		}
	}

	return views, nil
}

// resolveName резолвит имя владельца для языка
// Отсутствие значения для поддерживаемого языка - нарушение целостности:
// логируем и деградируем имя до пустой строки
func (s *CatalogService) resolveName(ctx context.Context, ownerID primitive.ObjectID, valueIDs []primitive.ObjectID, languageCode string) string {
	name, err := s.localizedValues.Resolve(ctx, valueIDs, languageCode)
	if err != nil {
		logger.Warn().
			Str("owner_id", ownerID.Hex()).
			Str("language_code", languageCode).
			Err(err).
			Msg("Failed to resolve localized name")
		return ""
	}
	return name
}

// FeaturedGroups возвращает витрину: активные товары, сгруппированные
// по категориям и ограниченные perGroup на группу
// Порядок фиксирован: группировка, отсечка, затем сортировка групп по имени
func (s *CatalogService) FeaturedGroups(ctx context.Context, languageCode string, perGroup int) ([]entity.FeaturedGroup, error) {
	if !s.localizedValues.IsSupported(languageCode) {
		return nil, ErrUnsupportedLanguage
	}

	groups, err := s.productRepo.FeaturedByCategory(ctx, perGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured groups: %w", err)
	}

	for i := range groups {
		category, err := s.categoryRepo.GetByID(ctx, groups[i].CategoryID)
		if err != nil {
			if !errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("failed to get category: %w", err)
			}
			// Товар ссылается на удалённую категорию
			logger.Warn().Str("category_id", groups[i].CategoryID.Hex()).Msg("Featured group references missing category")
			continue
		}
		groups[i].CategoryName = s.resolveName(ctx, category.ID, category.ValueIDs, languageCode)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CategoryName != groups[j].CategoryName {
			return groups[i].CategoryName < groups[j].CategoryName
		}
		return groups[i].CategoryID.Hex() < groups[j].CategoryID.Hex()
	})

	return groups, nil
}

// CreateCategory создает категорию с локализованными именами
// Недостающие поддерживаемые языки бэкфиллятся первым переданным именем
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	fallback := pickFallbackName(req.Names, s.localizedValues.SupportedLanguages())

	valueIDs, err := s.localizedValues.CreateSet(ctx, req.Names, fallback)
	if err != nil {
		if errors.Is(err, ErrUnsupportedLanguage) {
			return nil, ErrUnsupportedLanguage
		}
		return nil, fmt.Errorf("failed to create localized names: %w", err)
	}

	category := &entity.Category{
		ID:        primitive.NewObjectID(),
		ValueIDs:  valueIDs,
		Image:     req.Image,
		Featured:  req.Featured,
		CreatedAt: time.Now(),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoryCache(ctx)

	return category, nil
}

// pickFallbackName выбирает текст для бэкфилла недостающих языков
// Предпочитаем имя на первом поддерживаемом языке, иначе любое детерминированно
func pickFallbackName(names map[string]string, supported []string) string {
	for _, code := range supported {
		if text, ok := names[code]; ok {
			return text
		}
	}

	keys := make([]string, 0, len(names))
	for code := range names {
		keys = append(keys, code)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return names[keys[0]]
	}
	return ""
}

// UpdateCategory обновляет категорию и её локализованные имена
// Имена merge-or-append: существующий язык правится на месте,
// новый язык добавляется отдельным значением
func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID string, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	id, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return nil, ErrInvalidID
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	// Детерминированный порядок обхода языков
	codes := make([]string, 0, len(req.Names))
	for code := range req.Names {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		appendedID, err := s.localizedValues.Upsert(ctx, category.ValueIDs, code, req.Names[code])
		if err != nil {
			if errors.Is(err, ErrUnsupportedLanguage) {
				return nil, ErrUnsupportedLanguage
			}
			return nil, fmt.Errorf("failed to upsert localized name: %w", err)
		}
		if appendedID != nil {
			if err := s.categoryRepo.AppendValueID(ctx, category.ID, *appendedID); err != nil {
				return nil, fmt.Errorf("failed to append value id: %w", err)
			}
			category.ValueIDs = append(category.ValueIDs, *appendedID)
		}
	}

	category.Image = req.Image
	category.Featured = req.Featured

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategoryCache(ctx)

	return category, nil
}

// DeleteCategory удаляет категорию вместе с её локализованными именами
// Удаление отклоняется, пока на категорию ссылаются товары
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	id, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return ErrInvalidID
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products in category: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.localizedValues.DeleteSet(ctx, category.ValueIDs); err != nil {
		return fmt.Errorf("failed to delete localized names: %w", err)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategoryCache(ctx)

	return nil
}

// CreateProduct создает товар
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	categoryIDs, err := s.parseCategoryIDs(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		CategoryIDs: categoryIDs,
		Price:       req.Price,
		Quantity:    req.Quantity,
		SoldOut:     req.Quantity <= 0,
		Hidden:      req.Hidden,
		Featured:    req.Featured,
		Image:       req.Image,
		Images:      req.Images,
		CreatedAt:   time.Now(),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct обновляет товар
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrInvalidID
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	categoryIDs, err := s.parseCategoryIDs(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.CategoryIDs = categoryIDs
	product.Price = req.Price
	product.Quantity = req.Quantity
	product.SoldOut = req.SoldOut
	product.Hidden = req.Hidden
	product.Featured = req.Featured
	product.Image = req.Image
	product.Images = req.Images

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct удаляет товар
// Ссылки из корзин, списков и заказов не чистятся: корзина провалидирует
// товар при оформлении, заказ хранит позицию исторически
func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrInvalidID
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// parseCategoryIDs парсит и проверяет существование категорий товара
func (s *CatalogService) parseCategoryIDs(ctx context.Context, ids []string) ([]primitive.ObjectID, error) {
	categoryIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, raw := range ids {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, ErrInvalidID
		}
		if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		categoryIDs = append(categoryIDs, id)
	}
	return categoryIDs, nil
}

// invalidateCategoryCache сбрасывает кеш категорий для всех языков
// Ошибка кеша не роняет операцию записи
func (s *CatalogService) invalidateCategoryCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCategories(ctx, s.localizedValues.SupportedLanguages()); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}
