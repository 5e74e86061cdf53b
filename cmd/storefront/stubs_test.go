package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/storefront-ecom/internal/category"
	"github.com/MikeMC777/storefront-ecom/internal/dashboard"
	"github.com/MikeMC777/storefront-ecom/internal/merchant"
	"github.com/MikeMC777/storefront-ecom/internal/notification"
	ord "github.com/MikeMC777/storefront-ecom/internal/order"
	prod "github.com/MikeMC777/storefront-ecom/internal/product"
	"github.com/MikeMC777/storefront-ecom/internal/session"
	"github.com/MikeMC777/storefront-ecom/internal/user"
	"github.com/MikeMC777/storefront-ecom/internal/wishlist"
)

//
// ---------- STUBS & FAKES ----------
//

// stubProducts implements prod.Repository in memory.
type stubProducts struct {
	mu        sync.Mutex
	items     map[string]*prod.Product
	inUse     map[string]bool
	lastQuery prod.Query
}

func newStubProducts(ps ...prod.Product) *stubProducts {
	s := &stubProducts{items: map[string]*prod.Product{}, inUse: map[string]bool{}}
	for i := range ps {
		cp := ps[i]
		s.items[cp.ID] = &cp
	}
	return s
}

func (s *stubProducts) Create(_ context.Context, p *prod.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.items {
		if cur.Slug == p.Slug {
			return prod.ErrSlugTaken
		}
	}
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) GetBySlug(_ context.Context, slug string) (*prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, prod.ErrNotFound
}

func (s *stubProducts) GetMany(_ context.Context, ids []string) (map[string]prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]prod.Product{}
	for _, id := range ids {
		if p, ok := s.items[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (s *stubProducts) List(_ context.Context, q prod.Query) ([]prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	out := []prod.Product{}
	for _, p := range s.items {
		if q.Q != "" && !containsFold(p.Title, q.Q) && !containsFold(p.Description, q.Q) {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	start := q.Offset
	if start > len(out) {
		return []prod.Product{}, nil
	}
	end := start + q.Limit
	if end > len(out) || q.Limit <= 0 {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *stubProducts) Update(_ context.Context, p *prod.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return prod.ErrNotFound
	}
	for id, cur := range s.items {
		if id != p.ID && cur.Slug == p.Slug {
			return prod.ErrSlugTaken
		}
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse[id] {
		return false, prod.ErrInUse
	}
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// stubOrders implements ord.Repository in memory, with the same duplicate
// rule as the database: identical content is rejected.
type stubOrders struct {
	mu          sync.Mutex
	orders      map[string]*ord.Order
	items       map[string][]ord.Item
	fingerprint map[string]bool
}

func newStubOrders() *stubOrders {
	return &stubOrders{orders: map[string]*ord.Order{}, items: map[string][]ord.Item{}, fingerprint: map[string]bool{}}
}

func (s *stubOrders) Create(_ context.Context, o *ord.Order, items []ord.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp := ord.Fingerprint(o.Contact, items)
	if s.fingerprint[fp] {
		return ord.ErrDuplicate
	}
	s.fingerprint[fp] = true
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = o.ID
	}
	cp := *o
	s.orders[o.ID] = &cp
	s.items[o.ID] = append([]ord.Item(nil), items...)
	return nil
}

func (s *stubOrders) Get(_ context.Context, id string) (*ord.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ord.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrders) GetItems(_ context.Context, orderID string) ([]ord.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ord.Item{}, s.items[orderID]...), nil
}

func (s *stubOrders) List(_ context.Context, f ord.Filter) ([]ord.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []ord.Order{}
	for _, o := range s.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrders) Update(_ context.Context, o *ord.Order, prev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[o.ID]
	if !ok {
		return ord.ErrNotFound
	}
	if cur.Status != prev {
		return ord.ErrStatusChanged
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubOrders) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	delete(s.orders, id)
	return true, nil
}

func (s *stubOrders) DeleteItems(_ context.Context, orderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.items[orderID]))
	delete(s.items, orderID)
	return n, nil
}

// stubUsers implements user.Repository in memory.
type stubUsers struct {
	mu    sync.Mutex
	users map[string]user.User
}

func newStubUsers(us ...user.User) *stubUsers {
	s := &stubUsers{users: map[string]user.User{}}
	for _, u := range us {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUsers) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.users {
		if cur.Email == user.NormalizeEmail(u.Email) {
			return user.ErrAlreadyExist
		}
	}
	u.Email = user.NormalizeEmail(u.Email)
	s.users[u.ID] = *u
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUsers) List(context.Context, int, int) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []user.User{}
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUsers) Update(_ context.Context, u *user.User, updatePassword bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	if u.Email != "" {
		cur.Email = user.NormalizeEmail(u.Email)
	}
	if u.Role != "" {
		cur.Role = u.Role
	}
	if updatePassword {
		cur.PasswordHash = u.PasswordHash
	}
	s.users[u.ID] = cur
	return nil
}

func (s *stubUsers) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

// stubCategories implements category.Repository in memory.
type stubCategories struct {
	mu   sync.Mutex
	cats map[string]category.Category
}

func newStubCategories() *stubCategories {
	return &stubCategories{cats: map[string]category.Category{}}
}

func (s *stubCategories) List(context.Context) ([]category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []category.Category{}
	for _, c := range s.cats {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCategories) Create(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.cats {
		if cur.Name == c.Name || cur.ID == c.ID {
			return category.ErrAlreadyExists
		}
	}
	s.cats[c.ID] = *c
	return nil
}

func (s *stubCategories) Rename(_ context.Context, id, name string) (*category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return nil, category.ErrNotFound
	}
	c.Name = name
	s.cats[id] = c
	return &c, nil
}

func (s *stubCategories) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return false, nil
	}
	delete(s.cats, id)
	return true, nil
}

// stubNotifications implements notification.Repository in memory.
type stubNotifications struct {
	items map[string]notification.Notification
}

func (s *stubNotifications) List(_ context.Context, userID string, _ int) ([]notification.Notification, error) {
	out := []notification.Notification{}
	for _, n := range s.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotifications) UnreadCount(_ context.Context, userID string) (int, error) {
	n := 0
	for _, it := range s.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *stubNotifications) Get(_ context.Context, id string) (*notification.Notification, error) {
	n, ok := s.items[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	return &n, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, id string) error {
	n, ok := s.items[id]
	if !ok {
		return notification.ErrNotFound
	}
	n.IsRead = true
	s.items[id] = n
	return nil
}

// nopVisits drops visits.
type nopVisits struct{}

func (nopVisits) Record(context.Context, string, string) error { return nil }

// fakeDirectory answers from the stub user repository, like the in-process
// directory does, plus a fixed set of extra valid ids.
type fakeDirectory struct {
	users *stubUsers
	ids   map[string]bool
}

func (f fakeDirectory) LookupByEmail(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	u, err := f.users.GetByEmail(ctx, in.GetValue())
	if err != nil {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	return wrapperspb.String(u.ID), nil
}

func (f fakeDirectory) ValidateUser(_ context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(f.ids[in.GetValue()]), nil
}

// stubMerchants implements merchant.Repository in memory.
type stubMerchants struct{ items map[string]merchant.Merchant }

func (s *stubMerchants) List(context.Context) ([]merchant.Merchant, error) {
	out := []merchant.Merchant{}
	for _, m := range s.items {
		out = append(out, m)
	}
	return out, nil
}

func (s *stubMerchants) Get(_ context.Context, id string) (*merchant.Merchant, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, merchant.ErrNotFound
	}
	return &m, nil
}

func (s *stubMerchants) Create(_ context.Context, m *merchant.Merchant) error {
	s.items[m.ID] = *m
	return nil
}

func (s *stubMerchants) Update(_ context.Context, m *merchant.Merchant) error {
	if _, ok := s.items[m.ID]; !ok {
		return merchant.ErrNotFound
	}
	s.items[m.ID] = *m
	return nil
}

func (s *stubMerchants) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

// stubWishlist implements wishlist.Repository over a product stub.
type stubWishlist struct {
	products *stubProducts
	saved    map[string][]string
}

func (s *stubWishlist) List(ctx context.Context, userID string) ([]prod.Product, error) {
	out := []prod.Product{}
	for _, id := range s.saved[userID] {
		if p, err := s.products.GetByID(ctx, id); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubWishlist) Add(ctx context.Context, userID, productID string) (*prod.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, wishlist.ErrProductNotFound
	}
	for _, id := range s.saved[userID] {
		if id == productID {
			return nil, wishlist.ErrAlreadyExists
		}
	}
	s.saved[userID] = append(s.saved[userID], productID)
	return p, nil
}

func (s *stubWishlist) Remove(_ context.Context, userID, productID string) (bool, error) {
	ids := s.saved[userID]
	for i, id := range ids {
		if id == productID {
			s.saved[userID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// flatSource reports the same figures for every window.
type flatSource struct {
	revenue decimal.Decimal
	count   int64
	err     error
}

func (f flatSource) Revenue(context.Context, time.Time, time.Time, string) (decimal.Decimal, error) {
	return f.revenue, f.err
}

func (f flatSource) NewOrders(context.Context, time.Time, time.Time) (int64, error) {
	return f.count, f.err
}

func (f flatSource) NewCustomers(context.Context, time.Time, time.Time) (int64, error) {
	return f.count, f.err
}

func (f flatSource) Visitors(context.Context, time.Time, time.Time) (int64, error) {
	return f.count, f.err
}

//
// ---------- TEST SERVER ----------
//

const (
	adminID    = "0b7a3c0e-1f5e-4a2b-9d1e-3c2f1a0b9e01"
	customerID = "7c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e5f"
)

type testServer struct {
	r             *gin.Engine
	iss           *session.Issuer
	products      *stubProducts
	orders        *stubOrders
	users         *stubUsers
	categories    *stubCategories
	merchants     *stubMerchants
	wishlist      *stubWishlist
	notifications *stubNotifications
}

func newTestServer(ps ...prod.Product) *testServer {
	ts := &testServer{
		iss:           session.NewIssuer("test-secret", time.Hour),
		products:      newStubProducts(ps...),
		orders:        newStubOrders(),
		users:         newStubUsers(),
		categories:    newStubCategories(),
		merchants:     &stubMerchants{items: map[string]merchant.Merchant{}},
		notifications: &stubNotifications{items: map[string]notification.Notification{}},
	}
	ts.wishlist = &stubWishlist{products: ts.products, saved: map[string][]string{}}
	dir := fakeDirectory{users: ts.users, ids: map[string]bool{adminID: true, customerID: true}}
	ts.r = newRouter(routerDeps{
		Log:           slog.Default(),
		Issuer:        ts.iss,
		Products:      ts.products,
		Categories:    ts.categories,
		Merchants:     ts.merchants,
		Users:         ts.users,
		Orders:        ts.orders,
		Ext:           &ord.Ext{User: dir, Products: ts.products},
		Wishlist:      ts.wishlist,
		Notifications: ts.notifications,
		Stats: &dashboard.Aggregator{
			Source:          flatSource{revenue: decimal.NewFromInt(100), count: 3},
			CompletedStatus: ord.StatusDelivered,
			Now:             func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) },
			Location:        time.UTC,
		},
		Visits: nopVisits{},
	})
	return ts
}

func (ts *testServer) token(userID, email, role string) string {
	tok, _, err := ts.iss.Issue(userID, email, role)
	if err != nil {
		panic(err)
	}
	return tok
}

func (ts *testServer) adminToken() string {
	return ts.token(adminID, "admin@shop.test", user.RoleAdmin)
}

func (ts *testServer) customerToken() string {
	return ts.token(customerID, "jane@shop.test", user.RoleUser)
}

// do sends body (if any) as JSON with an optional bearer token.
func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
