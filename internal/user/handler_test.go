package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/training-management/internal/organization"
	"github.com/frahmantamala/training-management/internal/user"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		svc := user.NewService(newMemoryRepository(defaultAdmin()), organization.NewTaxonomy(nil), bcrypt.MinCost, logger.Discard())
		h := user.NewHandler(svc, logger.Discard())

		router = chi.NewRouter()
		router.Get("/admin/users", h.ListUsers)
		router.Post("/admin/users", h.CreateUser)
		router.Get("/admin/users/{id}", h.GetUser)
		router.Put("/admin/users/{id}", h.UpdateUser)
		router.Delete("/admin/users/{id}", h.DeleteUser)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates, updates and deletes an account", func() {
		w := serve(http.MethodPost, "/admin/users",
			`{"username":"user","password":"123","name":"部門主管","role":"GeneralUser","permissions":[{"company":"神資","viewAllDepartments":false,"allowedDepartments":["600-數位科技事業群"]}]}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))

		var created user.User
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.MustChangePassword).To(BeTrue())

		w = serve(http.MethodPut, "/admin/users/"+created.ID, `{"username":"user","name":"主管","role":"GeneralUser"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = serve(http.MethodGet, "/admin/users", "")
		var list user.ListResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Users).To(HaveLen(2))

		w = serve(http.MethodDelete, "/admin/users/"+created.ID, "")
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = serve(http.MethodGet, "/admin/users/"+created.ID, "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("refuses to delete the default admin", func() {
		w := serve(http.MethodDelete, "/admin/users/admin", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("CANNOT_DELETE_DEFAULT_ADMIN"))
	})

	It("rejects missing required fields", func() {
		w := serve(http.MethodPost, "/admin/users", `{"username":"x","role":"HR"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects malformed bodies", func() {
		w := serve(http.MethodPost, "/admin/users", `{`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
