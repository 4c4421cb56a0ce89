package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-adoption-market/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AllowDebugHeaders: true}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_AdoptionFlow(t *testing.T) {
	ts := newTestServer(t)

	shelterID := "shelter-1"
	applicantID := "user-1"

	// 1) Shelter publica un listing
	petID := createPet(t, ts.URL, shelterID, map[string]any{
		"name":    "Milo",
		"species": "dog",
		"breed":   "mixed",
		"sex":     "male",
	})

	// 2) Aparece en el listado público (sin auth)
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 public listing, got %d", st)
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 available pet, got %d body=%s", len(list), string(body))
		}
	}

	// 3) Un user NO puede crear listings
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets", applicantID, "user", map[string]any{
			"name": "Pirata", "species": "cat",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 user listing, got %d", st)
		}
	}

	// 4) Applicant postula
	reqID := submitAdoption(t, ts.URL, applicantID, petID)

	// 5) Segundo applicant choca con el claim
	{
		st, _ := doReq(t, ts.URL, "POST", "/adoptions", "user-2", "user", map[string]any{
			"pet_id": petID,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 second submit, got %d", st)
		}
	}

	// 6) El pet salió del listado público mientras está claimed
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d", st)
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 0 {
			t.Fatalf("claimed pet leaked into listing: %s", string(body))
		}
	}

	// 7) Shelter ajeno no puede decidir
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/adoptions/"+reqID, "shelter-2", "shelter", map[string]any{
			"status": "approved",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 foreign shelter decide, got %d", st)
		}
	}

	// 8) El shelter dueño aprueba
	{
		st, body := doReq(t, ts.URL, "PATCH", "/adoptions/"+reqID, shelterID, "shelter", map[string]any{
			"status": "approved",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status     string `json:"status"`
			ApprovedBy string `json:"approved_by"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "approved" || resp.ApprovedBy != shelterID {
			t.Fatalf("unexpected decision body=%s", string(body))
		}
	}

	// 9) El pet quedó adopted: el shelter lo ve, el público no
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, shelterID, "shelter", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 owner get, got %d", st)
		}
		var resp struct {
			AdoptionStatus string `json:"adoption_status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AdoptionStatus != "adopted" {
			t.Fatalf("expected adopted, got %q", resp.AdoptionStatus)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, "", "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 public get of adopted pet, got %d", st)
		}
	}
}

func TestHTTP_EndToEnd_DonationAcceptFlow(t *testing.T) {
	ts := newTestServer(t)

	// El shelter destino tiene que existir de verdad en identity.
	shelterID := registerAccount(t, ts.URL, "refugio@example.com", "shelter")
	donorID := "donor-1"

	offerID, petID := createOffer(t, ts.URL, donorID, shelterID)

	// Intake-pending: invisible para el público
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, "", "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 public get of intake pet, got %d", st)
		}
	}

	// El shelter acepta
	{
		st, body := doReq(t, ts.URL, "PATCH", "/donations/"+offerID, shelterID, "shelter", map[string]any{
			"status": "accepted",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
	}

	// Ahora sí está listado y adoptable
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d", st)
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected accepted pet listed, body=%s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/adoptions", "user-9", "user", map[string]any{
			"pet_id": petID,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 adopting donated pet, got %d", st)
		}
	}
}

func TestHTTP_EndToEnd_DonationRejectAndCleanup(t *testing.T) {
	ts := newTestServer(t)

	shelterID := registerAccount(t, ts.URL, "refugio@example.com", "shelter")
	offerID, petID := createOffer(t, ts.URL, "donor-1", shelterID)

	// Rechazo: la oferta queda rejected y el pet jamás se lista
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/donations/"+offerID, shelterID, "shelter", map[string]any{
			"status": "rejected",
			"notes":  "sin capacidad",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 reject, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d", st)
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 0 {
			t.Fatalf("rejected intake leaked into listing: %s", string(body))
		}
	}

	// Solo admin limpia; se lleva el pet huérfano
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/donations/"+offerID, "donor-1", "user", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 donor delete, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/donations/"+offerID, "admin-1", "admin", nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 admin delete, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, "admin-1", "admin", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 orphan pet gone, got %d", st)
		}
	}
}

func TestHTTP_RegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/auth/register", "", "", map[string]any{
		"email":    "ana@example.com",
		"name":     "Ana",
		"password": "supersecret",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/auth/login", "", "", map[string]any{
		"email":    "ana@example.com",
		"password": "supersecret",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &login)
	if login.Token == "" {
		t.Fatalf("missing token body=%s", string(body))
	}

	// /me con el bearer emitido
	req, _ := http.NewRequest("GET", ts.URL+"/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 /me, got %d", res.StatusCode)
	}
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	_ = json.NewDecoder(res.Body).Decode(&me)
	if me.Email != "ana@example.com" || me.Role != "user" {
		t.Fatalf("unexpected /me: %+v", me)
	}

	// login inválido
	st, _ = doReq(t, ts.URL, "POST", "/auth/login", "", "", map[string]any{
		"email":    "ana@example.com",
		"password": "wrongpass",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad login, got %d", st)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %q", st, string(body))
	}
}

// -------------------------
// Helpers
// -------------------------

func registerAccount(t *testing.T, baseURL, email, role string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/auth/register", "", "", map[string]any{
		"email":    email,
		"name":     "Cuenta " + role,
		"password": "supersecret",
		"role":     role,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("register: missing id body=%s", string(body))
	}
	return resp.ID
}

func createPet(t *testing.T, baseURL, shelterID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", shelterID, "shelter", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func submitAdoption(t *testing.T, baseURL, applicantID, petID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/adoptions", applicantID, "user", map[string]any{
		"pet_id":        petID,
		"message":       "tengo patio",
		"contact_phone": "555-0101",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 submit, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("submit: missing id body=%s", string(body))
	}
	return resp.ID
}

func createOffer(t *testing.T, baseURL, donorID, shelterID string) (offerID, petID string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/donations", donorID, "user", map[string]any{
		"pet": map[string]any{
			"name":    "Luna",
			"species": "cat",
			"sex":     "female",
		},
		"donor": map[string]any{
			"name":  "Ana",
			"phone": "555-0100",
			"email": "ana@example.com",
		},
		"shelter_id": shelterID,
		"reason":     "mudanza",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create offer, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID    string `json:"id"`
		PetID string `json:"pet_id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" || resp.PetID == "" {
		t.Fatalf("create offer: missing ids body=%s", string(body))
	}
	return resp.ID, resp.PetID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		if debugRole != "" {
			req.Header.Set("X-Debug-Role", debugRole)
		}
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
