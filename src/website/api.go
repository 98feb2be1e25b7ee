package website

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/assets"
	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikidata"
)

// Uploads are capped well below this by assets.MaxUploadBytes; the extra room
// covers the other multipart fields.
const maxMultipartMemory = assets.MaxUploadBytes + 1<<20

type apiPageSummary struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	TagPath     string            `json:"tagPath"`
	Excerpt     string            `json:"excerpt"`
	BannerImage string            `json:"bannerImage,omitempty"`
	Metadata    map[string]string `json:"metadata"`
	Version     int               `json:"version"`
	AuthorID    *string           `json:"authorId"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type apiPage struct {
	apiPageSummary
	Content []blocks.Block `json:"content"`
}

func pageSummaryToApi(p *models.PageSummary) apiPageSummary {
	var authorID *string
	if p.AuthorID != nil {
		id := p.AuthorID.String()
		authorID = &id
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return apiPageSummary{
		ID:          p.ID.String(),
		Title:       p.Title,
		Slug:        p.Slug,
		TagPath:     p.TagPath,
		Excerpt:     p.Excerpt,
		BannerImage: p.BannerImage,
		Metadata:    metadata,
		Version:     p.Version,
		AuthorID:    authorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func pageSummariesToApi(pages []*models.PageSummary) []apiPageSummary {
	result := make([]apiPageSummary, 0, len(pages))
	for _, p := range pages {
		result = append(result, pageSummaryToApi(p))
	}
	return result
}

func pageToApi(p *models.Page) apiPage {
	summary := p.Summary()
	content := p.Content
	if content == nil {
		content = []blocks.Block{}
	}
	return apiPage{
		apiPageSummary: pageSummaryToApi(&summary),
		Content:        content,
	}
}

func writeApiJson(c *RequestContext, status int, data any) ResponseData {
	res := ResponseData{StatusCode: status}
	res.WriteJson(data, c.Perf)
	return res
}

func APIGetPage(c *RequestContext) ResponseData {
	query := c.Req.URL.Query()
	tagPath, slug := query.Get("tagPath"), query.Get("slug")
	if tagPath == "" || slug == "" {
		return apiError(c, http.StatusBadRequest, NewSafeError(nil, "Both tagPath and slug are required."))
	}

	page, err := wikidata.FetchPage(c, c.Conn, wikidata.NormalizeTagPath(tagPath), slug)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return apiError(c, http.StatusNotFound, NewSafeError(err, "Page not found."))
		}
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to fetch page"))
	}
	return writeApiJson(c, http.StatusOK, pageToApi(page))
}

func APIRecentPages(c *RequestContext) ResponseData {
	query := c.Req.URL.Query()
	limit := blocks.DefaultRecentPagesLimit
	if l, err := strconv.Atoi(query.Get("limit")); err == nil {
		limit = l
	}

	pages, err := wikidata.FetchRecentPages(c, c.Conn, wikidata.NormalizeTagPath(query.Get("tagPath")), limit)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to fetch recent pages"))
	}
	return writeApiJson(c, http.StatusOK, pageSummariesToApi(pages))
}

func APIPagesByIDs(c *RequestContext) ResponseData {
	var ids []string
	for _, id := range strings.Split(c.Req.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return writeApiJson(c, http.StatusOK, []apiPageSummary{})
	}

	pages, err := wikidata.FetchPagesByIDs(c, c.Conn, ids)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to fetch pages"))
	}
	return writeApiJson(c, http.StatusOK, pageSummariesToApi(pages))
}

func fetchPageFromIDParam(c *RequestContext) (*models.Page, ResponseData, bool) {
	id, err := uuid.Parse(c.PathParams["id"])
	if err != nil {
		return nil, apiError(c, http.StatusNotFound, NewSafeError(err, "Page not found.")), false
	}
	page, err := wikidata.FetchPageByID(c, c.Conn, id)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, apiError(c, http.StatusNotFound, NewSafeError(err, "Page not found.")), false
		}
		return nil, apiError(c, http.StatusInternalServerError, oops.New(err, "failed to fetch page")), false
	}
	return page, ResponseData{}, true
}

func APIGetPageByID(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromIDParam(c)
	if !ok {
		return res
	}
	return writeApiJson(c, http.StatusOK, pageToApi(page))
}

type apiPageInput struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	TagPath     string            `json:"tagPath"`
	Content     json.RawMessage   `json:"content"`
	Excerpt     string            `json:"excerpt"`
	BannerImage string            `json:"bannerImage"`
	Metadata    map[string]string `json:"metadata"`
}

func readPageInput(c *RequestContext) (wikidata.PageInput, error) {
	body, err := io.ReadAll(io.LimitReader(c.Req.Body, maxMultipartMemory))
	if err != nil {
		return wikidata.PageInput{}, NewSafeError(err, "The request body could not be read.")
	}

	var in apiPageInput
	if err := json.Unmarshal(body, &in); err != nil {
		return wikidata.PageInput{}, NewSafeError(err, "The request body is not valid JSON.")
	}
	content, err := blocks.ParseDocument(in.Content)
	if err != nil {
		return wikidata.PageInput{}, NewSafeError(err, "The page content is not a valid block document.")
	}

	return wikidata.PageInput{
		Title:       in.Title,
		Slug:        in.Slug,
		TagPath:     in.TagPath,
		Content:     content,
		Excerpt:     in.Excerpt,
		BannerImage: in.BannerImage,
		Metadata:    in.Metadata,
	}, nil
}

type apiSaveResult struct {
	TagPath             string `json:"tagPath"`
	Slug                string `json:"slug"`
	IsFirstContribution bool   `json:"isFirstContribution"`
}

// saveError maps a failed save to a response. Only data problems are the
// client's fault.
func saveError(c *RequestContext, err error, msg string) ResponseData {
	var validation *blocks.ValidationError
	var input *wikidata.InputError
	switch {
	case errors.As(err, &validation):
		return apiError(c, http.StatusUnprocessableEntity, NewSafeError(err, "Invalid content: %s.", strings.Join(validation.Problems, "; ")))
	case errors.As(err, &input):
		return apiError(c, http.StatusUnprocessableEntity, NewSafeError(err, "%s", input.Message))
	case errors.Is(err, wikidata.ErrSlugTaken):
		return apiError(c, http.StatusConflict, NewSafeError(err, "A page with that slug already exists in this category."))
	}
	return apiError(c, http.StatusInternalServerError, oops.New(err, msg))
}

func APICreatePage(c *RequestContext) ResponseData {
	input, err := readPageInput(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err)
	}

	result, err := wikidata.CreatePage(c, c.Conn, c.CurrentUser, input)
	if err != nil {
		return saveError(c, err, "failed to create page")
	}

	c.Logger.Info().Str("page", result.Page.ID.String()).Str("user", c.CurrentUser.ID.String()).Msg("page created")
	return writeApiJson(c, http.StatusCreated, apiSaveResult{
		TagPath:             result.Page.TagPath,
		Slug:                result.Page.Slug,
		IsFirstContribution: result.IsFirstContribution,
	})
}

func APIUpdatePage(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromIDParam(c)
	if !ok {
		return res
	}
	if !canEditPage(c.CurrentUser, page) {
		return apiError(c, http.StatusForbidden, NewSafeError(nil, notAuthorMessage))
	}

	input, err := readPageInput(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, err)
	}
	if config.IsAuthorOnly(wikidata.NormalizeTagPath(input.TagPath)) && !page.IsAuthor(c.CurrentUser) {
		return apiError(c, http.StatusForbidden, NewSafeError(nil, notAuthorMessage))
	}

	result, err := wikidata.UpdatePage(c, c.Conn, c.CurrentUser, page.ID, input)
	if err != nil {
		return saveError(c, err, "failed to update page")
	}

	c.Logger.Info().Str("page", page.ID.String()).Int("version", result.Page.Version).Str("user", c.CurrentUser.ID.String()).Msg("page updated")
	return writeApiJson(c, http.StatusOK, apiSaveResult{
		TagPath:             result.Page.TagPath,
		Slug:                result.Page.Slug,
		IsFirstContribution: result.IsFirstContribution,
	})
}

func APIDeletePage(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromIDParam(c)
	if !ok {
		return res
	}
	if !canEditPage(c.CurrentUser, page) {
		return apiError(c, http.StatusForbidden, NewSafeError(nil, notAuthorMessage))
	}

	if err := wikidata.DeletePage(c, c.Conn, page.ID); err != nil {
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to delete page"))
	}

	c.Logger.Info().Str("page", page.ID.String()).Str("user", c.CurrentUser.ID.String()).Msg("page deleted")
	return ResponseData{StatusCode: http.StatusNoContent}
}

type apiRevision struct {
	ID          string    `json:"id"`
	Version     int       `json:"version"`
	Title       string    `json:"title"`
	AuthorID    *string   `json:"authorId"`
	AuthorName  *string   `json:"authorName"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// APIPageRevisions works for deleted pages too, since revisions outlive them.
func APIPageRevisions(c *RequestContext) ResponseData {
	id, err := uuid.Parse(c.PathParams["id"])
	if err != nil {
		return apiError(c, http.StatusNotFound, NewSafeError(err, "Page not found."))
	}

	revisions, err := wikidata.FetchRevisions(c, c.Conn, id)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to fetch revisions"))
	}

	result := make([]apiRevision, 0, len(revisions))
	for _, r := range revisions {
		var authorID *string
		if r.AuthorID != nil {
			s := r.AuthorID.String()
			authorID = &s
		}
		result = append(result, apiRevision{
			ID:          r.ID.String(),
			Version:     r.Version,
			Title:       r.Title,
			AuthorID:    authorID,
			AuthorName:  r.AuthorName,
			ContentHash: r.ContentHash,
			CreatedAt:   r.CreatedAt,
		})
	}
	return writeApiJson(c, http.StatusOK, result)
}

type apiUser struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	RadixAddress string `json:"radixAddress"`
}

func APISearchUsers(c *RequestContext) ResponseData {
	q := strings.TrimSpace(c.Req.URL.Query().Get("q"))
	if q == "" {
		return writeApiJson(c, http.StatusOK, []apiUser{})
	}

	users, err := wikidata.SearchUsers(c, c.Conn, q, wikidata.MaxUserSearchResults)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to search users"))
	}

	result := make([]apiUser, 0, len(users))
	for _, u := range users {
		result = append(result, apiUser{
			ID:           u.ID.String(),
			DisplayName:  u.DisplayName,
			RadixAddress: u.RadixAddress,
		})
	}
	return writeApiJson(c, http.StatusOK, result)
}

type apiUploadResult struct {
	URL string `json:"url"`
}

func APIUpload(c *RequestContext) ResponseData {
	if c.Services.Assets == nil {
		return apiError(c, http.StatusServiceUnavailable, NewSafeError(nil, "Uploads are not available right now."))
	}

	c.Req.Body = http.MaxBytesReader(c.Res, c.Req.Body, maxMultipartMemory)
	if err := c.Req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return apiError(c, http.StatusBadRequest, NewSafeError(err, "The upload could not be read. Files can be at most %s.", templates.FileSize(assets.MaxUploadBytes)))
	}
	file, header, err := c.Req.FormFile("file")
	if err != nil {
		return apiError(c, http.StatusBadRequest, NewSafeError(err, "No file was uploaded."))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, assets.MaxUploadBytes+1))
	if err != nil {
		return apiError(c, http.StatusBadRequest, NewSafeError(err, "The upload could not be read."))
	}
	if len(content) > assets.MaxUploadBytes {
		return apiError(c, http.StatusRequestEntityTooLarge, NewSafeError(nil, "Files can be at most %s.", templates.FileSize(assets.MaxUploadBytes)))
	}

	asset, err := c.Services.Assets.Create(c, c.Conn, assets.CreateInput{
		Content:    content,
		Filename:   header.Filename,
		UploaderID: &c.CurrentUser.ID,
	})
	if err != nil {
		var invalid *assets.InvalidAssetError
		if errors.As(err, &invalid) {
			return apiError(c, http.StatusUnprocessableEntity, NewSafeError(err, "%s", invalid.Error()))
		}
		return apiError(c, http.StatusInternalServerError, oops.New(err, "failed to store upload"))
	}

	c.Logger.Info().Str("asset", asset.ID.String()).Int("size", asset.Size).Msg("asset uploaded")
	return writeApiJson(c, http.StatusCreated, apiUploadResult{URL: c.Services.Assets.URL(asset)})
}
