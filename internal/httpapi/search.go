package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UkralStul/content-service/internal/domain"
)

// parseSearchFilter читает фильтр из query. Массивы принимаются повтором параметра
// или через запятую: ?tags=a&tags=b и ?tags=a,b эквивалентны.
func parseSearchFilter(q url.Values) (domain.SearchFilter, error) {
	var (
		f   domain.SearchFilter
		err error
	)
	if f.Page, err = intParam(q, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q, "limit"); err != nil {
		return f, err
	}
	f.Title = q.Get("title")
	f.AuthorIDs = listParam(q, "authorIds")
	f.Tags = listParam(q, "tags")

	if v := q.Get("postType"); v != "" {
		f.PostType = domain.PostType(strings.ToUpper(v))
		if !f.PostType.Valid() {
			return f, domain.BadRequest("Invalid postType")
		}
	}
	if v := q.Get("postStatus"); v != "" {
		f.PostStatus = domain.PostStatus(strings.ToUpper(v))
		if !f.PostStatus.Valid() {
			return f, domain.BadRequest("Invalid postStatus")
		}
	}
	if v := q.Get("sortDirection"); v != "" {
		f.SortDirection = domain.SortDirection(strings.ToUpper(v))
		if !f.SortDirection.Valid() {
			return f, domain.BadRequest("Invalid sortDirection")
		}
	}
	if v := q.Get("sortType"); v != "" {
		f.SortType = domain.SortType(strings.ToUpper(v))
		if !f.SortType.Valid() {
			return f, domain.BadRequest("Invalid sortType")
		}
	}
	if v := q.Get("postDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, domain.BadRequest("Invalid postDate")
		}
		f.PostDate = &t
	}
	return f, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.BadRequest("Invalid " + key)
	}
	return n, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (h *handler) searchUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	f, err := parseSearchFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Search.FindUserPosts(r.Context(), userID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) searchPublicPosts(w http.ResponseWriter, r *http.Request) {
	f, err := parseSearchFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Search.FindPublicPosts(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) searchNewPosts(w http.ResponseWriter, r *http.Request) {
	f, err := parseSearchFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Search.FindNewPostsByDate(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) personalFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	f, err := parseSearchFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Search.FindPersonalFeed(r.Context(), userID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
