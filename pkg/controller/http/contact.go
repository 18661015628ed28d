package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/service/storage"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/safe"
)

func listContactsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		groups, err := uc.Contact.ListForUser(r.Context(), id.Subject)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toContactsResponse(groups))
	}
}

type addContactRequest struct {
	Name        string   `json:"name"`
	LinkedInURL string   `json:"linkedin_url"`
	Notes       string   `json:"notes"`
	Priority    string   `json:"priority"`
	ImageURLs   []string `json:"image_urls"`
}

func addContactHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		var req addContactRequest
		if err := readJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		c, err := uc.Contact.AddContact(r.Context(), id.Subject, usecase.ContactInput{
			Name:        req.Name,
			LinkedInURL: req.LinkedInURL,
			Notes:       req.Notes,
			Priority:    req.Priority,
			ImageURLs:   req.ImageURLs,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toContactResponse(c))
	}
}

func removeContactHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		contactID := model.ContactID(chi.URLParam(r, "id"))
		if err := uc.Contact.RemoveContact(r.Context(), contactID, id.Subject); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// uploadImageHandler accepts a multipart form with one "image" file
func uploadImageHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageBytes+maxJSONBody)
		file, header, err := r.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				handleError(w, r, goerr.Wrap(storage.ErrImageTooLarge, "upload too large", goerr.T(usecase.TagValidation)))
				return
			}
			handleError(w, r, goerr.Wrap(err, "image file is required", goerr.T(usecase.TagValidation)))
			return
		}
		defer safe.Close(r.Context(), file)

		u, err := uc.Contact.UploadImage(r.Context(), id.Subject, header.Header.Get("Content-Type"), file)
		if err != nil {
			if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrImageTooLarge) {
				err = goerr.Wrap(err, "rejected image", goerr.T(usecase.TagValidation))
			}
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, uploadResponse{URL: u})
	}
}
