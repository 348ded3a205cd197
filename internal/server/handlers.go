package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"bookstack/internal/app"
	"bookstack/internal/util"
	"bookstack/pkg/domain"
)

const (
	// maxImageBytes is the per-file upload ceiling.
	maxImageBytes = 1_000_000
	maxBodyBytes  = 1 << 20
	// multipartMemoryBytes bounds in-memory buffering during form parsing.
	multipartMemoryBytes = 8 << 20
)

type signupRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createBookRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
}

type updateBookRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Author      *string  `json:"author" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
}

func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return errInvalidJSON
	}
	return s.validate.Struct(dst)
}

var errInvalidJSON = jsonError("invalid JSON body")

type jsonError string

func (e jsonError) Error() string { return string(e) }

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, _ domain.User) {
	var req signupRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	user, err := s.app.SignUp(req.Name, req.Email, req.Password, req.Roles)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, user, "User Registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ domain.User) {
	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]string{"token": token}, "Login successfully")
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request, caller domain.User) {
	var req createBookRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	book, err := s.app.CreateBook(app.CreateBook{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Price:       req.Price,
		Category:    req.Category,
	}, caller)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, book, "Book created successfully")
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request, _ domain.User) {
	query := r.URL.Query()
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	books, listErr := s.app.ListBooks(page, query.Get("keyword"))
	if listErr != nil {
		writeAppError(w, r, listErr)
		return
	}
	writeResult(w, http.StatusOK, books, "")
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request, _ domain.User) {
	book, err := s.app.GetBook(r.PathValue("id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, book, "")
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request, _ domain.User) {
	id := r.PathValue("id")
	if !util.IsValidID(id) {
		writeAppError(w, r, app.ErrInvalidID)
		return
	}
	var req updateBookRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	book, err := s.app.UpdateBook(id, app.UpdateBook{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Price:       req.Price,
		Category:    req.Category,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, book, "Book updated successfully")
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request, _ domain.User) {
	book, err := s.app.DeleteBook(r.PathValue("id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]string{"id": book.ID}, "Book deleted successfully")
}

// handleUploadImages gates media type and size before the service is ever
// reached, then hands the whole accepted batch to the app.
func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request, _ domain.User) {
	id := r.PathValue("id")
	if !util.IsValidID(id) {
		writeAppError(w, r, app.ErrInvalidID)
		return
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "files field is required")
		return
	}

	files := make([]app.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := readUploadedImage(header)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		files = append(files, file)
	}

	book, err := s.app.AttachImages(id, files)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, book, "Images uploaded successfully")
}

func readUploadedImage(header *multipart.FileHeader) (app.UploadFile, error) {
	if header.Size > maxImageBytes {
		return app.UploadFile{}, jsonError("File size must be less than 1MB")
	}
	if !isImageUpload(header.Filename, header.Header.Get("Content-Type")) {
		return app.UploadFile{}, jsonError("only jpg, jpeg and png files are accepted")
	}
	f, err := header.Open()
	if err != nil {
		return app.UploadFile{}, jsonError("unreadable file upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return app.UploadFile{}, jsonError("unreadable file upload")
	}
	if len(data) > maxImageBytes {
		return app.UploadFile{}, jsonError("File size must be less than 1MB")
	}
	return app.UploadFile{
		FileName:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func isImageUpload(filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return false
	}
	if contentType == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
