package store

import (
	"context"
	"errors"
	"testing"

	"github.com/tiendify/tiendify/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCategory(t *testing.T, s *Store, slug, name string) *model.Category {
	t.Helper()
	c := &model.Category{Slug: slug, Name: name, Description: name + " things"}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category %q: %v", slug, err)
	}
	return c
}

func seedProduct(t *testing.T, s *Store, name string, categoryIDs ...int64) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Description: "a " + name, Price: 1999, Stock: 5}
	if err := s.CreateProduct(context.Background(), p, categoryIDs); err != nil {
		t.Fatalf("create product %q: %v", name, err)
	}
	return p
}

func TestProductCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cat := seedCategory(t, s, "lamps", "Lamps")
	p := seedProduct(t, s, "Desk Lamp", cat.ID)
	if p.ID == 0 {
		t.Fatal("product id not assigned")
	}

	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "Desk Lamp" || got.Price != 1999 || got.Stock != 5 {
		t.Errorf("got %+v", got)
	}
	if got.Hidden {
		t.Error("new product should not be hidden")
	}

	got.Name = "Floor Lamp"
	got.Price = 4999
	if err := s.UpdateProduct(ctx, got, nil); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	got, err = s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct after update: %v", err)
	}
	if got.Name != "Floor Lamp" || got.Price != 4999 {
		t.Errorf("after update got %+v", got)
	}

	// Category links were replaced with the empty set.
	cats, err := s.ProductCategories(ctx, []int64{p.ID})
	if err != nil {
		t.Fatalf("ProductCategories: %v", err)
	}
	if len(cats[p.ID]) != 0 {
		t.Errorf("categories after update = %v, want none", cats[p.ID])
	}

	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := s.GetProduct(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProduct after delete err = %v, want ErrNotFound", err)
	}
}

func TestProductNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.GetProduct(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProduct err = %v, want ErrNotFound", err)
	}
	if err := s.UpdateProduct(ctx, &model.Product{ID: 12345, Name: "x"}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProduct err = %v, want ErrNotFound", err)
	}
	if err := s.SetProductHidden(ctx, 12345, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetProductHidden err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteProduct(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProduct err = %v, want ErrNotFound", err)
	}
}

func TestListProductsSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedProduct(t, s, "Red Mug")
	seedProduct(t, s, "Blue Mug")
	seedProduct(t, s, "Green Plate")

	all, err := s.ListProducts(ctx, 20, 0, "")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}

	mugs, err := s.ListProducts(ctx, 20, 0, "mug")
	if err != nil {
		t.Fatalf("ListProducts(search): %v", err)
	}
	if len(mugs) != 2 {
		t.Errorf("len(mugs) = %d, want 2", len(mugs))
	}

	page, err := s.ListProducts(ctx, 2, 2, "")
	if err != nil {
		t.Fatalf("ListProducts(page): %v", err)
	}
	if len(page) != 1 {
		t.Errorf("len(page) = %d, want 1", len(page))
	}

	n, err := s.CountProducts(ctx)
	if err != nil {
		t.Fatalf("CountProducts: %v", err)
	}
	if n != 3 {
		t.Errorf("CountProducts = %d, want 3", n)
	}
}

func TestSetProductHidden(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := seedProduct(t, s, "Hideable")
	if err := s.SetProductHidden(ctx, p.ID, true); err != nil {
		t.Fatalf("SetProductHidden: %v", err)
	}
	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !got.Hidden {
		t.Error("product not hidden")
	}
}

func TestProductCategoriesBatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	home := seedCategory(t, s, "home", "Home")
	office := seedCategory(t, s, "office", "Office")
	p1 := seedProduct(t, s, "Lamp", home.ID, office.ID)
	p2 := seedProduct(t, s, "Chair", office.ID)
	p3 := seedProduct(t, s, "Uncategorized")

	cats, err := s.ProductCategories(ctx, []int64{p1.ID, p2.ID, p3.ID})
	if err != nil {
		t.Fatalf("ProductCategories: %v", err)
	}
	if len(cats[p1.ID]) != 2 {
		t.Errorf("p1 categories = %v, want 2", cats[p1.ID])
	}
	if len(cats[p2.ID]) != 1 || cats[p2.ID][0].Slug != "office" {
		t.Errorf("p2 categories = %v, want [office]", cats[p2.ID])
	}
	if len(cats[p3.ID]) != 0 {
		t.Errorf("p3 categories = %v, want none", cats[p3.ID])
	}

	// Empty input short-circuits without touching the database.
	empty, err := s.ProductCategories(ctx, nil)
	if err != nil {
		t.Fatalf("ProductCategories(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty = %v", empty)
	}
}

func TestProductMediafiles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := seedProduct(t, s, "Pictured")

	m1, err := s.AddProductMediafile(ctx, p.ID, "https://cdn.shop.example/a.jpg")
	if err != nil {
		t.Fatalf("AddProductMediafile: %v", err)
	}
	if _, err := s.AddProductMediafile(ctx, p.ID, "https://cdn.shop.example/b.jpg"); err != nil {
		t.Fatalf("AddProductMediafile #2: %v", err)
	}

	media, err := s.ProductMediafiles(ctx, []int64{p.ID})
	if err != nil {
		t.Fatalf("ProductMediafiles: %v", err)
	}
	if len(media[p.ID]) != 2 {
		t.Fatalf("media = %v, want 2 entries", media[p.ID])
	}
	if media[p.ID][0].URL != "https://cdn.shop.example/a.jpg" {
		t.Errorf("first media URL = %q", media[p.ID][0].URL)
	}

	if err := s.DeleteMediafile(ctx, m1.ID); err != nil {
		t.Fatalf("DeleteMediafile: %v", err)
	}
	media, err = s.ProductMediafiles(ctx, []int64{p.ID})
	if err != nil {
		t.Fatalf("ProductMediafiles after delete: %v", err)
	}
	if len(media[p.ID]) != 1 {
		t.Errorf("media after delete = %v, want 1 entry", media[p.ID])
	}

	// Attaching to a missing product fails up front.
	if _, err := s.AddProductMediafile(ctx, 9999, "https://cdn.shop.example/c.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddProductMediafile(missing) err = %v, want ErrNotFound", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedCategory(t, s, "garden", "Garden")
	seedCategory(t, s, "kitchen", "Kitchen")

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("len(cats) = %d, want 2", len(cats))
	}

	if err := s.DeleteCategoryBySlug(ctx, "garden"); err != nil {
		t.Fatalf("DeleteCategoryBySlug: %v", err)
	}
	if err := s.DeleteCategoryBySlug(ctx, "garden"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	cats, err = s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "kitchen" {
		t.Errorf("cats = %+v, want [kitchen]", cats)
	}
}
