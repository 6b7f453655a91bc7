package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// resource wires the stock JSON CRUD endpoints for one entity store.
type resource[T any] struct {
	get    func(r *http.Request, id, owner string) (T, error)
	create func(r *http.Request, e T) (T, error)
	update func(r *http.Request, e T) (T, error)
	remove func(r *http.Request, id, owner string) error
	list   func(r *http.Request, owner string) ([]T, error)
	// scope stamps owner and id onto a decoded body, minting an id on
	// create.
	scope func(e *T, id, owner string)
	// mutates marks writes that shift budget figures; they bump the
	// owner's cache generation.
	mutates bool
}

func mountResource[T any](mux *http.ServeMux, s *Server, path string, res resource[T]) {
	mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		items, err := res.list(r, owner)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	})

	mux.HandleFunc("GET "+path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		item, err := res.get(r, r.PathValue("id"), owner)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	mux.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		var e T
		if err := decodeJSON(r, &e); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		res.scope(&e, "", owner)

		created, err := res.create(r, e)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if res.mutates {
			s.invalidateOwner(owner)
		}
		writeJSON(w, http.StatusCreated, created)
	})

	mux.HandleFunc("PUT "+path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		var e T
		if err := decodeJSON(r, &e); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		res.scope(&e, r.PathValue("id"), owner)

		updated, err := res.update(r, e)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if res.mutates {
			s.invalidateOwner(owner)
		}
		writeJSON(w, http.StatusOK, updated)
	})

	mux.HandleFunc("DELETE "+path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		if err := res.remove(r, r.PathValue("id"), owner); err != nil {
			s.writeError(w, r, err)
			return
		}
		if res.mutates {
			s.invalidateOwner(owner)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func mintID(current, pathID string) string {
	if pathID != "" {
		return pathID
	}
	if current != "" {
		return current
	}
	return uuid.NewString()
}

func (s *Server) mountEntityRoutes(mux *http.ServeMux) {
	mountResource(mux, s, "/api/accounts", resource[core.Account]{
		get: func(r *http.Request, id, owner string) (core.Account, error) {
			return s.stores.Accounts.GetByID(r.Context(), id, owner)
		},
		create: func(r *http.Request, a core.Account) (core.Account, error) {
			return s.stores.Accounts.Create(r.Context(), a)
		},
		update: func(r *http.Request, a core.Account) (core.Account, error) {
			return s.stores.Accounts.Update(r.Context(), a)
		},
		remove: func(r *http.Request, id, owner string) error {
			return s.stores.Accounts.Delete(r.Context(), id, owner)
		},
		list: func(r *http.Request, owner string) ([]core.Account, error) {
			if archived, _ := strconv.ParseBool(r.URL.Query().Get("archived")); archived {
				return s.stores.Accounts.ListArchived(r.Context(), owner)
			}
			return s.stores.Accounts.ListActive(r.Context(), owner)
		},
		scope: func(a *core.Account, id, owner string) {
			a.ID = mintID(a.ID, id)
			a.OwnerID = owner
		},
		mutates: true,
	})

	mountResource(mux, s, "/api/monthly-transactions", resource[core.MonthlyTransaction]{
		get: func(r *http.Request, id, owner string) (core.MonthlyTransaction, error) {
			return s.stores.Monthly.GetByID(r.Context(), id, owner)
		},
		create: func(r *http.Request, m core.MonthlyTransaction) (core.MonthlyTransaction, error) {
			return s.stores.Monthly.Create(r.Context(), m)
		},
		update: func(r *http.Request, m core.MonthlyTransaction) (core.MonthlyTransaction, error) {
			return s.stores.Monthly.Update(r.Context(), m)
		},
		remove: func(r *http.Request, id, owner string) error {
			return s.stores.Monthly.Delete(r.Context(), id, owner)
		},
		list: func(r *http.Request, owner string) ([]core.MonthlyTransaction, error) {
			return s.stores.Monthly.ListAll(r.Context(), owner)
		},
		scope: func(m *core.MonthlyTransaction, id, owner string) {
			m.ID = mintID(m.ID, id)
			m.OwnerID = owner
		},
		mutates: true,
	})

	mountResource(mux, s, "/api/savings", resource[core.Saving]{
		get: func(r *http.Request, id, owner string) (core.Saving, error) {
			return s.stores.Savings.GetByID(r.Context(), id, owner)
		},
		create: func(r *http.Request, sv core.Saving) (core.Saving, error) {
			return s.stores.Savings.Create(r.Context(), sv)
		},
		update: func(r *http.Request, sv core.Saving) (core.Saving, error) {
			return s.stores.Savings.Update(r.Context(), sv)
		},
		remove: func(r *http.Request, id, owner string) error {
			return s.stores.Savings.Delete(r.Context(), id, owner)
		},
		list: func(r *http.Request, owner string) ([]core.Saving, error) {
			return s.stores.Savings.ListAll(r.Context(), owner)
		},
		scope: func(sv *core.Saving, id, owner string) {
			sv.ID = mintID(sv.ID, id)
			sv.OwnerID = owner
		},
		mutates: true,
	})

	mountResource(mux, s, "/api/planned-expenses", resource[core.PlannedExpense]{
		get: func(r *http.Request, id, owner string) (core.PlannedExpense, error) {
			return s.stores.Planned.GetByID(r.Context(), id, owner)
		},
		create: func(r *http.Request, p core.PlannedExpense) (core.PlannedExpense, error) {
			return s.stores.Planned.Create(r.Context(), p)
		},
		update: func(r *http.Request, p core.PlannedExpense) (core.PlannedExpense, error) {
			return s.stores.Planned.Update(r.Context(), p)
		},
		remove: func(r *http.Request, id, owner string) error {
			return s.stores.Planned.Delete(r.Context(), id, owner)
		},
		list: func(r *http.Request, owner string) ([]core.PlannedExpense, error) {
			return s.stores.Planned.ListAll(r.Context(), owner)
		},
		scope: func(p *core.PlannedExpense, id, owner string) {
			p.ID = mintID(p.ID, id)
			p.OwnerID = owner
		},
		mutates: true,
	})

	mountResource(mux, s, "/api/categories", resource[core.Category]{
		get: func(r *http.Request, id, owner string) (core.Category, error) {
			return s.stores.Categories.GetByID(r.Context(), id, owner)
		},
		create: func(r *http.Request, c core.Category) (core.Category, error) {
			return s.stores.Categories.Create(r.Context(), c)
		},
		update: func(r *http.Request, c core.Category) (core.Category, error) {
			return s.stores.Categories.Update(r.Context(), c)
		},
		remove: func(r *http.Request, id, owner string) error {
			return s.stores.Categories.Delete(r.Context(), id, owner)
		},
		list: func(r *http.Request, owner string) ([]core.Category, error) {
			return s.stores.Categories.ListAll(r.Context(), owner)
		},
		scope: func(c *core.Category, id, owner string) {
			c.ID = mintID(c.ID, id)
			c.OwnerID = owner
		},
	})
}
