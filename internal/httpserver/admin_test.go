package httpserver

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/remote/remotetest"
	"chaeen-storefront/internal/service/gate"
	"chaeen-storefront/internal/storage"
)

type gateBodyJSON struct {
	State   string `json:"state"`
	Message string `json:"message"`
	Notices []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"notices"`
}

func multipartImage(t *testing.T, name, contentType string, data []byte) (string, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return w.FormDataContentType(), buf
}

func adminFixture(t *testing.T) *remotetest.Fixture {
	t.Helper()
	f := remotetest.New()
	if _, err := f.AddPrincipal("admin@example.com", "+919876543210", "admin-pw", domain.RoleAdmin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := f.AddPrincipal("user@example.com", "", "user-pw", domain.RoleUser); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return f
}

func signedInAdmin(t *testing.T, f *remotetest.Fixture) *client {
	t.Helper()
	c := newClient(t, testRouter(t, f))
	if rec := c.json(http.MethodPost, "/api/admin/enter", nil); rec.Code != http.StatusOK {
		t.Fatalf("enter: expected 200, got %d", rec.Code)
	}
	rec := c.json(http.MethodPost, "/api/admin/login", loginRequest{Identifier: "9876543210", Password: "admin-pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	return c
}

func TestAdminGate_Flow(t *testing.T) {
	f := adminFixture(t)
	c := newClient(t, testRouter(t, f))

	// A fresh session is still loading and refuses credentials.
	rec := c.json(http.MethodPost, "/api/admin/login", loginRequest{Identifier: "admin@example.com", Password: "admin-pw"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("login before enter: expected 409, got %d", rec.Code)
	}

	rec = c.json(http.MethodPost, "/api/admin/enter", nil)
	var body gateBodyJSON
	decode(t, rec, &body)
	if rec.Code != http.StatusOK || body.State != string(gate.StateUnauthenticated) {
		t.Fatalf("enter: unexpected %d %s", rec.Code, rec.Body.String())
	}

	if rec := c.json(http.MethodGet, "/api/admin/products", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("dashboard before login: expected 401, got %d", rec.Code)
	}

	rec = c.json(http.MethodPost, "/api/admin/login", loginRequest{Identifier: "admin@example.com", Password: "wrong"})
	body = gateBodyJSON{}
	decode(t, rec, &body)
	if rec.Code != http.StatusUnauthorized || body.Message != "Invalid login credentials" {
		t.Fatalf("wrong password: unexpected %d %s", rec.Code, rec.Body.String())
	}

	rec = c.json(http.MethodPost, "/api/admin/login", loginRequest{Identifier: "user@example.com", Password: "user-pw"})
	body = gateBodyJSON{}
	decode(t, rec, &body)
	if rec.Code != http.StatusUnauthorized || body.Message != gate.MsgAccessDenied {
		t.Fatalf("non-admin: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if f.Sessions.Len() != 0 {
		t.Fatalf("non-admin session should be signed out, %d left", f.Sessions.Len())
	}

	rec = c.json(http.MethodPost, "/api/admin/login", loginRequest{Identifier: "admin@example.com", Password: "admin-pw"})
	body = gateBodyJSON{}
	decode(t, rec, &body)
	if rec.Code != http.StatusOK || body.State != string(gate.StateAuthenticated) {
		t.Fatalf("admin login: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if len(body.Notices) != 1 || body.Notices[0].Title != gate.MsgWelcome {
		t.Fatalf("expected welcome notice, got %+v", body.Notices)
	}

	rec = c.json(http.MethodGet, "/api/admin/state", nil)
	body = gateBodyJSON{}
	decode(t, rec, &body)
	if body.State != string(gate.StateAuthenticated) {
		t.Fatalf("state after login: %s", rec.Body.String())
	}
	if rec := c.json(http.MethodGet, "/api/admin/products", nil); rec.Code != http.StatusOK {
		t.Fatalf("dashboard after login: expected 200, got %d", rec.Code)
	}

	rec = c.json(http.MethodPost, "/api/admin/logout", nil)
	body = gateBodyJSON{}
	decode(t, rec, &body)
	if body.State != string(gate.StateUnauthenticated) || f.Sessions.Len() != 0 {
		t.Fatalf("logout: unexpected %s, %d sessions", rec.Body.String(), f.Sessions.Len())
	}
	if rec := c.json(http.MethodGet, "/api/admin/products", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("dashboard after logout: expected 401, got %d", rec.Code)
	}
}

func TestAdminGate_ExpiredSessionIsRechecked(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)

	f.Sessions.Expire()
	if rec := c.json(http.MethodGet, "/api/admin/products", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired session: expected 401, got %d", rec.Code)
	}
	rec := c.json(http.MethodGet, "/api/admin/state", nil)
	var body gateBodyJSON
	decode(t, rec, &body)
	if body.State != string(gate.StateUnauthenticated) {
		t.Fatalf("gate should drop back to login, got %s", rec.Body.String())
	}
}

func TestAdminGate_TamperedCookieStartsOver(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)
	for _, ck := range c.cookies {
		ck.Value = "garbage" + ck.Value
	}
	if rec := c.json(http.MethodGet, "/api/admin/products", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered cookie: expected 401, got %d", rec.Code)
	}
}

func TestAdminProducts_CreateUpdateDelete(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)

	contentType, buf := multipartImage(t, "leaf.png", "image/png", []byte("png-bytes"))
	rec := c.do(http.MethodPost, "/api/admin/images", contentType, buf)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		URL     string `json:"url"`
		Notices []struct {
			Title string `json:"title"`
		} `json:"notices"`
	}
	decode(t, rec, &uploaded)
	if !strings.HasPrefix(uploaded.URL, remotetest.PublicURL+storage.PublicPathPrefix+"product-images/products/") {
		t.Fatalf("unexpected image url %q", uploaded.URL)
	}
	if len(uploaded.Notices) != 1 || uploaded.Notices[0].Title != "Image uploaded successfully" {
		t.Fatalf("unexpected upload notices %+v", uploaded.Notices)
	}

	// The stored object is readable through the public route.
	rec = c.do(http.MethodGet, strings.TrimPrefix(uploaded.URL, remotetest.PublicURL), "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("public object: unexpected %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "max-age=3600" {
		t.Fatalf("unexpected cache control %q", rec.Header().Get("Cache-Control"))
	}

	form := map[string]any{
		"name":           "CHAEEN MATCHA",
		"weight":         "30g",
		"category":       "ceremonial",
		"original_price": "999",
		"price":          "899",
		"sort_order":     "1",
		"is_active":      true,
		"image":          uploaded.URL,
		"description":    "Stone-ground in Shizuoka",
		"benefits":       "Rich in Antioxidants\n\n  Calm Focus",
	}
	rec = c.json(http.MethodPost, "/api/admin/products", form)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Product domain.Product `json:"product"`
	}
	decode(t, rec, &created)
	if created.Product.Price != 899 || len(created.Product.Benefits) != 2 || created.Product.Benefits[1] != "  Calm Focus" {
		t.Fatalf("unexpected created product %+v", created.Product)
	}

	rec = c.json(http.MethodGet, "/api/products", nil)
	if !strings.Contains(rec.Body.String(), created.Product.ID) {
		t.Fatalf("public catalog should show the new product: %s", rec.Body.String())
	}

	rec = c.json(http.MethodGet, "/api/admin/products/"+created.Product.ID+"/form", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"price":"899"`) {
		t.Fatalf("edit form: unexpected %d %s", rec.Code, rec.Body.String())
	}

	form["price"] = "799"
	form["is_active"] = false
	rec = c.json(http.MethodPut, "/api/admin/products/"+created.Product.ID, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	rec = c.json(http.MethodGet, "/api/products", nil)
	if strings.Contains(rec.Body.String(), created.Product.ID) {
		t.Fatalf("inactive product should leave the public catalog: %s", rec.Body.String())
	}

	rec = c.json(http.MethodPost, "/api/admin/products/"+created.Product.ID+"/delete", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), created.Product.ID) {
		t.Fatalf("request delete: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if _, err := f.Products.GetByID(context.Background(), created.Product.ID); err != nil {
		t.Fatalf("product must survive until confirmed: %v", err)
	}
	rec = c.json(http.MethodPost, "/api/admin/delete/confirm", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Product deleted successfully") {
		t.Fatalf("confirm delete: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if _, err := f.Products.GetByID(context.Background(), created.Product.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected product gone, got %v", err)
	}
	if rec := c.json(http.MethodPost, "/api/admin/delete/confirm", nil); rec.Code != http.StatusConflict {
		t.Fatalf("confirm without selection: expected 409, got %d", rec.Code)
	}

	rec = c.do(http.MethodDelete, "/api/admin/images?url="+url.QueryEscape(uploaded.URL), "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete image: expected 204, got %d", rec.Code)
	}
	if rec := c.do(http.MethodGet, strings.TrimPrefix(uploaded.URL, remotetest.PublicURL), "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("removed object: expected 404, got %d", rec.Code)
	}
}

func TestAdminProducts_CancelDelete(t *testing.T) {
	f := adminFixture(t)
	p, err := f.Products.Create(context.Background(), domain.ProductInput{Name: "Keep", Weight: "30g", Category: domain.CategorySets})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	c := signedInAdmin(t, f)

	c.json(http.MethodPost, "/api/admin/products/"+p.ID+"/delete", nil)
	rec := c.json(http.MethodPost, "/api/admin/delete/cancel", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pending_delete":""`) {
		t.Fatalf("cancel: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if rec := c.json(http.MethodPost, "/api/admin/delete/confirm", nil); rec.Code != http.StatusConflict {
		t.Fatalf("confirm after cancel: expected 409, got %d", rec.Code)
	}
	if _, err := f.Products.GetByID(context.Background(), p.ID); err != nil {
		t.Fatalf("product should be kept: %v", err)
	}
}

func TestAdminProducts_Validation(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)

	rec := c.json(http.MethodPost, "/api/admin/products", map[string]any{"name": "No image", "weight": "30g"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Fields []string `json:"fields"`
	}
	decode(t, rec, &body)
	if strings.Join(body.Fields, ",") != "description,image" {
		t.Fatalf("unexpected fields %v", body.Fields)
	}

	contentType, buf := multipartImage(t, "notes.txt", "text/plain", []byte("hello"))
	rec = c.do(http.MethodPost, "/api/admin/images", contentType, buf)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid file") {
		t.Fatalf("non-image upload: unexpected %d %s", rec.Code, rec.Body.String())
	}

	big := bytes.Repeat([]byte{0}, 5*1024*1024+1)
	contentType, buf = multipartImage(t, "huge.png", "image/png", big)
	rec = c.do(http.MethodPost, "/api/admin/images", contentType, buf)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "File too large") {
		t.Fatalf("oversized upload: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if f.Objects.Len() != 0 {
		t.Fatalf("rejected uploads must not reach storage, %d stored", f.Objects.Len())
	}
}

func TestAdminProducts_BackendFailure(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)
	f.Products.Fail = errors.New("connection reset")

	rec := c.json(http.MethodPost, "/api/admin/products", map[string]any{
		"name": "X", "weight": "30g", "description": "d", "image": "https://cdn.example.com/x.png",
	})
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("expected 502 with message, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminGate_EnterDiscardsPriorSession(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)
	if f.Sessions.Len() != 1 {
		t.Fatalf("expected one live session, got %d", f.Sessions.Len())
	}

	rec := c.json(http.MethodPost, "/api/admin/enter", nil)
	var body gateBodyJSON
	decode(t, rec, &body)
	if rec.Code != http.StatusOK || body.State != string(gate.StateUnauthenticated) {
		t.Fatalf("enter: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if f.Sessions.Len() != 0 {
		t.Fatalf("prior session should be revoked, %d left", f.Sessions.Len())
	}
	if rec := c.json(http.MethodGet, "/api/admin/products", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("dashboard after remount: expected 401, got %d", rec.Code)
	}
}

func TestAdminForm_SetAndClearImage(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)

	form := map[string]any{"name": "CHAEEN MATCHA", "weight": "30g", "description": "d", "image": ""}
	rec := c.json(http.MethodPost, "/api/admin/form/image", map[string]any{"form": form, "image_url": "not even a url"})
	var body struct {
		Form struct {
			Image string `json:"image"`
			Name  string `json:"name"`
		} `json:"form"`
		CanSubmit bool `json:"can_submit"`
	}
	decode(t, rec, &body)
	if rec.Code != http.StatusOK || body.Form.Image != "not even a url" || body.Form.Name != "CHAEEN MATCHA" || !body.CanSubmit {
		t.Fatalf("pasted url: unexpected %d %s", rec.Code, rec.Body.String())
	}

	form["image"] = "https://cdn.example.com/a.png"
	rec = c.json(http.MethodPost, "/api/admin/form/image", map[string]any{"form": form})
	body.CanSubmit = true
	decode(t, rec, &body)
	if body.Form.Image != "" || body.CanSubmit {
		t.Fatalf("cleared image: unexpected %s", rec.Body.String())
	}
}

func TestAdminImages_RequestBodyIsCapped(t *testing.T) {
	f := adminFixture(t)
	c := signedInAdmin(t, f)

	huge := bytes.Repeat([]byte{0}, maxUploadBody+1)
	contentType, buf := multipartImage(t, "huge.png", "image/png", huge)
	rec := c.do(http.MethodPost, "/api/admin/images", contentType, buf)
	if rec.Code != http.StatusRequestEntityTooLarge || !strings.Contains(rec.Body.String(), "File too large") {
		t.Fatalf("oversized body: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if f.Objects.Len() != 0 {
		t.Fatalf("capped upload must not reach storage, %d stored", f.Objects.Len())
	}
}
