package website

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/radixwiki/wiki/src/assets"
	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/render"
	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/radixwiki/wiki/src/wikiurl"
)

const metaFieldPrefix = "meta."

// editorState is everything the editor form round-trips. The block document
// travels as JSON in a hidden field; the rest are plain form fields.
type editorState struct {
	Title       string
	Slug        string
	TagPath     string
	Excerpt     string
	BannerImage string
	Metadata    map[string]string
	Content     []blocks.Block
}

func newEditorState(tagPath string) editorState {
	return editorState{
		TagPath:  wikidata.NormalizeTagPath(tagPath),
		Metadata: map[string]string{},
		Content:  blocks.DefaultDocument(),
	}
}

func editorStateFromPage(page *models.Page) editorState {
	metadata := make(map[string]string, len(page.Metadata))
	for k, v := range page.Metadata {
		metadata[k] = v
	}
	return editorState{
		Title:       page.Title,
		Slug:        page.Slug,
		TagPath:     page.TagPath,
		Excerpt:     page.Excerpt,
		BannerImage: page.BannerImage,
		Metadata:    metadata,
		Content:     page.Content,
	}
}

func (s editorState) Input() wikidata.PageInput {
	return wikidata.PageInput{
		Title:       s.Title,
		Slug:        s.Slug,
		TagPath:     s.TagPath,
		Content:     s.Content,
		Excerpt:     s.Excerpt,
		BannerImage: s.BannerImage,
		Metadata:    s.Metadata,
	}
}

// parseEditorForm rebuilds the editor state from a submitted form, applying
// any block field edits to the draft.
func parseEditorForm(form url.Values) (editorState, error) {
	content, err := blocks.ParseDocument([]byte(form.Get("draft")))
	if err != nil {
		return editorState{}, NewSafeError(err, "The draft could not be read. Reload the editor and try again.")
	}

	state := editorState{
		Title:       form.Get("title"),
		Slug:        form.Get("slug"),
		TagPath:     form.Get("tagPath"),
		Excerpt:     form.Get("excerpt"),
		BannerImage: form.Get("bannerImage"),
		Metadata:    map[string]string{},
		Content:     render.ApplyForm(content, form),
	}
	for key, values := range form {
		if name, ok := strings.CutPrefix(key, metaFieldPrefix); ok && name != "" && len(values) > 0 {
			state.Metadata[name] = values[len(values)-1]
		}
	}
	return state, nil
}

// editorStep is the outcome of one editor submission.
type editorStep struct {
	State    editorState
	Selected blocks.Path
	Save     bool
}

// applyEditorAction applies the pressed button to the state. "save" asks
// the caller to store the page; "refresh" and an empty action only keep the
// field edits.
func applyEditorAction(state editorState, action string) (editorStep, error) {
	switch action {
	case "save":
		return editorStep{State: state, Save: true}, nil
	case "", "refresh":
		return editorStep{State: state}, nil
	}

	a, err := render.ParseAction(action)
	if err != nil {
		return editorStep{State: state}, err
	}
	content, selected, err := a.Apply(state.Content)
	if err != nil {
		return editorStep{State: state}, err
	}
	state.Content = content
	return editorStep{State: state, Selected: selected}, nil
}

type editorData struct {
	templates.BaseData

	IsNew       bool
	SubmitUrl   string
	CancelUrl   string
	UploadUrl   string
	BaseVersion int

	Title       string
	Slug        string
	TagPath     string
	Excerpt     string
	BannerImage string
	Metadata    []templates.MetadataField
	Categories  []templates.Category

	Draft         string
	Blocks        template.HTML
	SelectedID    string
	MaxUploadSize int
}

// editorMetadataFields lists the category's recognized keys first, in
// config order, then any other keys the page already has.
func editorMetadataFields(state editorState) []templates.MetadataField {
	var result []templates.MetadataField
	seen := map[string]bool{}
	if cat, ok := config.FindCategory(state.TagPath); ok {
		for _, key := range cat.Metadata {
			seen[key.Key] = true
			result = append(result, templates.MetadataField{Key: key.Key, Label: key.Label, Value: state.Metadata[key.Key]})
		}
	}
	var extra []string
	for key := range state.Metadata {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		result = append(result, templates.MetadataField{Key: key, Label: key, Value: state.Metadata[key]})
	}
	return result
}

type editorPage struct {
	IsNew       bool
	Title       string
	SubmitUrl   string
	CancelUrl   string
	BaseVersion int
	Breadcrumbs []templates.Breadcrumb
}

func renderEditor(c *RequestContext, ep editorPage, state editorStep, status int, notices ...templates.Notice) ResponseData {
	draft, err := json.Marshal(state.State.Content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to encode draft"))
	}

	var selectedID string
	if state.Selected != nil {
		if b, ok := blocks.Get(state.State.Content, state.Selected); ok {
			selectedID = b.ID
		}
	}

	baseData := getBaseData(c, ep.Title, ep.Breadcrumbs)
	baseData.Notices = append(baseData.Notices, notices...)

	res := ResponseData{StatusCode: status}
	res.MustWriteTemplate("wiki_editor.html", editorData{
		BaseData: baseData,

		IsNew:       ep.IsNew,
		SubmitUrl:   ep.SubmitUrl,
		CancelUrl:   ep.CancelUrl,
		UploadUrl:   wikiurl.BuildApiUpload(),
		BaseVersion: ep.BaseVersion,

		Title:       state.State.Title,
		Slug:        state.State.Slug,
		TagPath:     state.State.TagPath,
		Excerpt:     state.State.Excerpt,
		BannerImage: state.State.BannerImage,
		Metadata:    editorMetadataFields(state.State),
		Categories:  templates.CategoriesToTemplate(),

		Draft:         string(draft),
		Blocks:        c.Services.Renderer.RenderDocument(c, state.State.Content, render.Edit, state.Selected),
		SelectedID:    selectedID,
		MaxUploadSize: assets.MaxUploadBytes,
	}, c.Perf)
	return res
}

func failureNotice(msg string) templates.Notice {
	return templates.Notice{Class: "failure", Content: template.HTML(template.HTMLEscapeString(msg))}
}

// saveErrorNotice turns a failed save into something to show the editor,
// or returns false for errors that aren't the user's to fix.
func saveErrorNotice(err error) (templates.Notice, bool) {
	var validation *blocks.ValidationError
	var input *wikidata.InputError
	var safe *SafeError
	switch {
	case errors.As(err, &validation):
		return failureNotice("The page can't be saved: " + strings.Join(validation.Problems, "; ") + "."), true
	case errors.As(err, &input):
		return failureNotice(input.Message), true
	case errors.Is(err, wikidata.ErrSlugTaken):
		return failureNotice("A page with that address already exists in this category."), true
	case errors.As(err, &safe):
		return failureNotice(safe.Msg), true
	}
	return templates.Notice{}, false
}

func savedNotice(res *ResponseData, result *wikidata.SaveResult, verb string) {
	res.AddFutureNotice("success", fmt.Sprintf("%s &ldquo;%s&rdquo;.", verb, template.HTMLEscapeString(result.Page.Title)))
	if result.IsFirstContribution {
		res.AddFutureNotice("success", "Thanks for your first contribution to the wiki!")
	}
}

func WikiNewPage(c *RequestContext) ResponseData {
	state := newEditorState(c.Req.URL.Query().Get("tagPath"))
	return renderEditor(c, newPageEditor(), editorStep{State: state}, http.StatusOK)
}

func newPageEditor() editorPage {
	return editorPage{
		IsNew:       true,
		Title:       "New page",
		SubmitUrl:   wikiurl.BuildNewPage(""),
		CancelUrl:   wikiurl.BuildWikiIndex(),
		Breadcrumbs: []templates.Breadcrumb{{Name: "New page"}},
	}
}

func WikiNewPageSubmit(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "The form could not be read."))
	}
	ep := newPageEditor()

	state, err := parseEditorForm(form)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	step, err := applyEditorAction(state, form.Get("action"))
	if err != nil {
		return renderEditor(c, ep, step, http.StatusOK, failureNotice("That change couldn't be made to the draft."))
	}
	if !step.Save {
		return renderEditor(c, ep, step, http.StatusOK)
	}

	result, err := wikidata.CreatePage(c, c.Conn, c.CurrentUser, step.State.Input())
	if err != nil {
		if notice, ok := saveErrorNotice(err); ok {
			return renderEditor(c, ep, step, http.StatusUnprocessableEntity, notice)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create page"))
	}

	c.Logger.Info().Str("page", result.Page.ID.String()).Str("user", c.CurrentUser.ID.String()).Msg("page created")
	res := c.Redirect(wikiurl.BuildPage(result.Page.TagPath, result.Page.Slug), http.StatusSeeOther)
	savedNotice(&res, result, "Created")
	return res
}

func editPageEditor(page *models.Page) editorPage {
	return editorPage{
		Title:       "Editing " + page.Title,
		SubmitUrl:   wikiurl.BuildEditPage(page.TagPath, page.Slug),
		CancelUrl:   wikiurl.BuildPage(page.TagPath, page.Slug),
		BaseVersion: page.Version,
		Breadcrumbs: append(pageBreadcrumbs(page), templates.Breadcrumb{Name: "Edit"}),
	}
}

func WikiEditPage(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}
	if !canEditPage(c.CurrentUser, page) {
		return Forbidden(c, notAuthorMessage)
	}

	return renderEditor(c, editPageEditor(page), editorStep{State: editorStateFromPage(page)}, http.StatusOK)
}

func WikiEditPageSubmit(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}
	if !canEditPage(c.CurrentUser, page) {
		return Forbidden(c, notAuthorMessage)
	}

	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "The form could not be read."))
	}
	ep := editPageEditor(page)
	if v, err := strconv.Atoi(form.Get("baseVersion")); err == nil {
		ep.BaseVersion = v
	}

	state, err := parseEditorForm(form)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	step, err := applyEditorAction(state, form.Get("action"))
	if err != nil {
		return renderEditor(c, ep, step, http.StatusOK, failureNotice("That change couldn't be made to the draft."))
	}
	if !step.Save {
		return renderEditor(c, ep, step, http.StatusOK)
	}

	if config.IsAuthorOnly(wikidata.NormalizeTagPath(step.State.TagPath)) && !page.IsAuthor(c.CurrentUser) {
		return renderEditor(c, ep, step, http.StatusForbidden, failureNotice(notAuthorMessage))
	}

	result, err := wikidata.UpdatePage(c, c.Conn, c.CurrentUser, page.ID, step.State.Input())
	if err != nil {
		if notice, ok := saveErrorNotice(err); ok {
			return renderEditor(c, ep, step, http.StatusUnprocessableEntity, notice)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update page"))
	}

	c.Logger.Info().Str("page", page.ID.String()).Int("version", result.Page.Version).Str("user", c.CurrentUser.ID.String()).Msg("page updated")
	res = c.Redirect(wikiurl.BuildPage(result.Page.TagPath, result.Page.Slug), http.StatusSeeOther)
	savedNotice(&res, result, "Saved")
	if ep.BaseVersion > 0 && ep.BaseVersion < page.Version {
		res.AddFutureNotice("warn", "Someone else saved this page while you were editing. Your version replaced theirs; their changes are still in the history.")
	}
	return res
}
