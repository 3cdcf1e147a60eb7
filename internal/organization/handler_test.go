package organization_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/organization"
	"github.com/frahmantamala/training-management/internal/transport"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Organization Handler", func() {
	var handler *organization.Handler

	BeforeEach(func() {
		baseHandler := transport.NewBaseHandler(logger.Discard())
		handler = organization.NewHandler(baseHandler, organization.NewTaxonomy(nil))
	})

	It("should handle GET /organization/companies", func() {
		req := httptest.NewRequest(http.MethodGet, "/organization/companies", nil)
		w := httptest.NewRecorder()

		handler.GetCompanies(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response organization.CompaniesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Companies).To(HaveLen(6))
	})

	It("should narrow to the caller's scope when asked", func() {
		p := &auth.Principal{Role: auth.RoleHR, Permissions: []auth.CompanyPermission{
			{Company: "新達", ViewAllDepartments: true},
		}}
		req := httptest.NewRequest(http.MethodGet, "/organization/companies?scope=visible", nil)
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
		w := httptest.NewRecorder()

		handler.GetCompanies(w, req)

		var response organization.CompaniesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Companies).To(HaveLen(1))
		Expect(response.Companies[0].Name).To(Equal("新達"))
	})

	It("should require a principal for the scoped view", func() {
		req := httptest.NewRequest(http.MethodGet, "/organization/companies?scope=visible", nil)
		w := httptest.NewRecorder()

		handler.GetCompanies(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
