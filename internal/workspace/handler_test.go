package workspace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/workspace"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type staticControllers struct {
	c *workspace.Controller
}

func (s staticControllers) Controller(context.Context, *auth.Principal) (*workspace.Controller, error) {
	return s.c, nil
}

var _ = Describe("Workspace Handler", func() {
	var (
		store   *fakeStore
		handler *workspace.Handler
	)

	BeforeEach(func() {
		records := []course.Course{
			record("a", "神資", "600-數位科技事業群", auth.CreatedByHR),
			record("b", "神資", "600-數位科技事業群", auth.CreatedByUser),
		}
		store = &fakeStore{records: records}
		c := workspace.NewController(manager, records, store, nil, 0, logger.Discard())
		handler = workspace.NewHandler(staticControllers{c: c}, logger.Discard())
	})

	call := func(h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), manager))
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	It("selects all deletable records", func() {
		w := call(handler.SelectAll, workspace.SelectAllRequest{Selected: true})
		Expect(w.Code).To(Equal(http.StatusOK))

		var state workspace.SelectionState
		Expect(json.NewDecoder(w.Body).Decode(&state)).To(Succeed())
		Expect(state.Selected).To(Equal([]string{"b"}))
		Expect(state.AllSelected).To(BeTrue())
	})

	It("reports refused toggles", func() {
		w := call(handler.Toggle, workspace.ToggleRequest{ID: "a"})
		var res workspace.ToggleResponse
		Expect(json.NewDecoder(w.Body).Decode(&res)).To(Succeed())
		Expect(res.Toggled).To(BeFalse())
	})

	It("rejects unknown views", func() {
		Expect(call(handler.SetView, workspace.ViewRequest{View: "calendar"}).Code).To(Equal(http.StatusBadRequest))
	})

	It("requires confirmation before deleting", func() {
		call(handler.SelectAll, workspace.SelectAllRequest{Selected: true})
		Expect(call(handler.BatchDelete, workspace.BatchDeleteRequest{}).Code).To(Equal(http.StatusBadRequest))
		Expect(store.batchDeleted).To(BeEmpty())
	})

	It("returns counts for a confirmed delete", func() {
		call(handler.SelectAll, workspace.SelectAllRequest{Selected: true})
		w := call(handler.BatchDelete, workspace.BatchDeleteRequest{Confirm: true})
		Expect(w.Code).To(Equal(http.StatusOK))

		var res workspace.BatchDeleteResponse
		Expect(json.NewDecoder(w.Body).Decode(&res)).To(Succeed())
		Expect(res.Result.Succeeded).To(Equal(1))
		Expect(res.Selection.Selected).To(BeEmpty())
	})

	It("answers 502 with counts when the backend fails", func() {
		call(handler.SelectAll, workspace.SelectAllRequest{Selected: true})
		store.setErr(errors.New("down"))

		w := call(handler.BatchDelete, workspace.BatchDeleteRequest{Confirm: true})
		Expect(w.Code).To(Equal(http.StatusBadGateway))
		Expect(w.Body.String()).To(ContainSubstring(`"failed":1`))
	})
})
