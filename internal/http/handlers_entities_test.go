package http

import (
	"net/http"
	"testing"

	"bilancio/internal/core"
)

func TestAccountCRUD(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/accounts", map[string]any{
		"name":                "Checking",
		"accountType":         "checking",
		"currentBalance":      "1200",
		"sumsToMonthlyBudget": true,
	}, testOwner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Account](t, rec)
	if created.ID == "" {
		t.Fatal("created account has no id")
	}
	if created.OwnerID != testOwner {
		t.Errorf("ownerId = %q, want %q", created.OwnerID, testOwner)
	}

	rec = ts.do(t, http.MethodGet, "/api/accounts/"+created.ID, nil, testOwner)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}

	created.Name = "Main Checking"
	rec = ts.do(t, http.MethodPut, "/api/accounts/"+created.ID, created, testOwner)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[core.Account](t, rec); got.Name != "Main Checking" {
		t.Errorf("updated name = %q, want Main Checking", got.Name)
	}

	rec = ts.do(t, http.MethodDelete, "/api/accounts/"+created.ID, nil, testOwner)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/accounts/"+created.ID, nil, testOwner)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestListAccounts_ArchivedFilter(t *testing.T) {
	ts := newTestServer(t)

	for _, a := range []map[string]any{
		{"id": "acc-1", "name": "Active", "accountType": "checking"},
		{"id": "acc-2", "name": "Old", "accountType": "checking", "isArchived": true},
	} {
		rec := ts.do(t, http.MethodPost, "/api/accounts", a, testOwner)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := ts.do(t, http.MethodGet, "/api/accounts", nil, testOwner)
	active := decodeBody[[]core.Account](t, rec)
	if len(active) != 1 || active[0].ID != "acc-1" {
		t.Errorf("active list = %+v, want only acc-1", active)
	}

	rec = ts.do(t, http.MethodGet, "/api/accounts?archived=true", nil, testOwner)
	archived := decodeBody[[]core.Account](t, rec)
	if len(archived) != 1 || archived[0].ID != "acc-2" {
		t.Errorf("archived list = %+v, want only acc-2", archived)
	}
}

func TestCategoryCRUD(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/categories", map[string]any{
		"name":          "Food",
		"categoryType":  "expense",
		"subcategories": []string{"groceries", "restaurants"},
	}, testOwner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Category](t, rec)
	if len(created.Subcategories) != 2 {
		t.Errorf("subcategories = %v, want 2 entries", created.Subcategories)
	}

	rec = ts.do(t, http.MethodGet, "/api/categories", nil, testOwner)
	list := decodeBody[[]core.Category](t, rec)
	if len(list) != 1 {
		t.Errorf("list has %d categories, want 1", len(list))
	}
}

func TestSavingsAndPlannedRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/savings", map[string]any{
		"name":           "Vacation",
		"goalAmount":     "3000",
		"amountPerMonth": "150",
	}, testOwner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create saving status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/planned-expenses", map[string]any{
		"name":        "Car service",
		"totalAmount": "500",
		"isRecurring": false,
		"date":        "2025-03-01T00:00:00Z",
	}, testOwner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create planned expense status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/monthly-transactions", map[string]any{
		"monthlyTransactionType": "expense",
		"amount":                 "800",
		"dayOfMonth":             1,
		"accountId":              "acc-1",
	}, testOwner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create monthly template status = %d: %s", rec.Code, rec.Body.String())
	}

	for _, path := range []string{"/api/savings", "/api/planned-expenses", "/api/monthly-transactions"} {
		rec := ts.do(t, http.MethodGet, path, nil, testOwner)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}

	rec = ts.do(t, http.MethodGet, "/api/savings", nil, "someone-else")
	if others := decodeBody[[]core.Saving](t, rec); len(others) != 0 {
		t.Errorf("cross-owner savings list = %+v, want empty", others)
	}
}
