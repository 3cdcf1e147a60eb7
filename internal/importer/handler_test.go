package importer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		committer *fakeCommitter
		router    chi.Router
	)

	BeforeEach(func() {
		committer = &fakeCommitter{}
		svc := importer.NewService(
			importer.NewPipeline(newNormalizer(), logger.Discard()),
			importer.NewSessionStore(time.Hour, func() time.Time { return fixedNow }),
			func(context.Context, *auth.Principal) (importer.Committer, error) { return committer, nil },
			nil,
			logger.Discard(),
		)
		h := importer.NewHandler(svc, 1024, logger.Discard())

		router = chi.NewRouter()
		router.Get("/imports/template", h.GetTemplate)
		router.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), hr)))
				})
			})
			r.Post("/imports", h.CreateImport)
			r.Get("/imports/{id}", h.GetImport)
			r.Put("/imports/{id}", h.ResubmitImport)
			r.Post("/imports/{id}/back", h.BackImport)
			r.Post("/imports/{id}/commit", h.CommitImport)
			r.Delete("/imports/{id}", h.DeleteImport)
		})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeSession := func(w *httptest.ResponseRecorder) importer.Session {
		var sess importer.Session
		Expect(json.NewDecoder(w.Body).Decode(&sess)).To(Succeed())
		return sess
	}

	It("serves the template with a byte order mark", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/imports/template", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		Expect(w.Body.String()).To(HavePrefix("\ufeff課程名稱,"))
	})

	It("creates a preview from JSON text", func() {
		body := `{"text":"新人訓練,神資,600-數位科技事業群"}`
		req := httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := serve(req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		sess := decodeSession(w)
		Expect(sess.Step).To(Equal(importer.StepPreview))
		Expect(sess.Preview.Accepted).To(HaveLen(1))
	})

	It("creates a preview from an uploaded file and commits it", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "courses.csv")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte(mixedInput))
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/imports", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := serve(req)
		Expect(w.Code).To(Equal(http.StatusCreated))
		sess := decodeSession(w)
		Expect(sess.Preview.Rejected).To(HaveLen(1))

		w = serve(httptest.NewRequest(http.MethodPost, "/imports/"+sess.ID+"/commit", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		done := decodeSession(w)
		Expect(done.Step).To(Equal(importer.StepResult))
		Expect(done.Result.Succeeded).To(Equal(1))
		Expect(committer.calls).To(Equal(1))
	})

	It("accepts a raw text body and supports going back and discarding", func() {
		w := serve(httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(mixedInput)))
		Expect(w.Code).To(Equal(http.StatusCreated))
		sess := decodeSession(w)

		w = serve(httptest.NewRequest(http.MethodPost, "/imports/"+sess.ID+"/back", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeSession(w).Step).To(Equal(importer.StepInput))

		w = serve(httptest.NewRequest(http.MethodPut, "/imports/"+sess.ID, strings.NewReader("新人訓練,神資,600-數位科技事業群")))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeSession(w).Preview.Rejected).To(BeEmpty())

		w = serve(httptest.NewRequest(http.MethodDelete, "/imports/"+sess.ID, nil))
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = serve(httptest.NewRequest(http.MethodGet, "/imports/"+sess.ID, nil))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects empty input", func() {
		w := serve(httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader("")))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var resp struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error.Code).To(Equal(string(internal.ErrCodeEmptyImport)))
		Expect(resp.Error.Message).To(Equal("請輸入資料或上傳檔案"))
	})

	It("rejects uploads over the size limit", func() {
		big := strings.Repeat("新人訓練,神資,600-數位科技事業群\n", 100)
		w := serve(httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(big)))

		Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
	})
})
