package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"smartCV/internal/persist"
	"smartCV/internal/profile"
	"smartCV/internal/resume"
	"smartCV/internal/style"
	"smartCV/internal/suggest"
	"smartCV/internal/table"
)

type stubSuggester struct {
	style   suggest.Style
	err     error
	text    string
	started chan struct{}
	unblock chan struct{}
}

func (f *stubSuggester) SuggestStyle(ctx context.Context, _ suggest.Image) (suggest.Style, error) {
	f.wait(ctx)
	return f.style, f.err
}

type failingGenerator struct{}

func (failingGenerator) GenerateText(context.Context, string) (string, error) {
	return "", errors.New("upstream timeout")
}

func (failingGenerator) GenerateJSON(context.Context, string, *suggest.Image) (string, error) {
	return "", errors.New("upstream timeout")
}

func (f *stubSuggester) ImproveText(ctx context.Context, text string, _ suggest.TextKind) string {
	f.wait(ctx)
	if f.text == "" {
		return text
	}
	return f.text
}

func (f *stubSuggester) wait(ctx context.Context) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.unblock == nil {
		return
	}
	select {
	case <-f.unblock:
	case <-ctx.Done():
	}
}

func newSession(t *testing.T, sg Suggester) (*Session, *persist.MemoryStore) {
	t.Helper()
	store := persist.NewMemoryStore()
	w := persist.NewWriter(store, time.Hour, nil)
	return New(Options{Writer: w, Suggester: sg}), store
}

func exported(t *testing.T, s *Session) string {
	t.Helper()
	data, err := s.Export()
	require.NoError(t, err)
	return string(data)
}

func TestImport_FailureLeavesStateUnchanged(t *testing.T) {
	s, _ := newSession(t, nil)
	before := exported(t, s)

	var parseErr *resume.ParseError
	require.ErrorAs(t, s.Import([]byte(`{"personalInfo":`)), &parseErr)

	var valErr *resume.ValidationError
	require.ErrorAs(t, s.Import([]byte(`{"experience":[]}`)), &valErr)

	assert.Equal(t, before, exported(t, s))
}

func TestImport_ReplacesWholesaleAndKeepsConfigWhenAbsent(t *testing.T) {
	s, _ := newSession(t, nil)
	require.NoError(t, s.UpdateConfig(ConfigPatch{TemplateID: ptr(resume.TemplateClassic)}))

	require.NoError(t, s.Import([]byte(`{"personalInfo":{"fullName":"Ada"},"skills":[{"id":"s","name":"Go","level":9}]}`)))
	doc, cfg := s.Snapshot()
	assert.Equal(t, "Ada", doc.PersonalInfo.FullName)
	assert.Empty(t, doc.Experience)
	assert.Equal(t, 5, doc.Skills[0].Level)
	assert.Equal(t, resume.TemplateClassic, cfg.TemplateID)

	require.NoError(t, s.Import([]byte(`{"personalInfo":{},"config":{"templateId":"creative","borderRadius":9}}`)))
	cfg = s.Config()
	assert.Equal(t, resume.TemplateCreative, cfg.TemplateID)
	assert.Equal(t, 9.0, cfg.GlobalDesign.BorderRadius)
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := newSession(t, nil)
	require.NoError(t, s.SetSectionStyle("main-header", style.SectionStyle{FontSize: style.Ptr(1.5)}))
	data, err := s.Export()
	require.NoError(t, err)

	other, _ := newSession(t, nil)
	require.NoError(t, other.Import(data))
	assert.Equal(t, string(data), exported(t, other))
}

func TestDocumentListsKeepOrder(t *testing.T) {
	s, _ := newSession(t, nil)
	a, err := s.AddExperience(resume.Experience{Role: "A"})
	require.NoError(t, err)
	b, err := s.AddExperience(resume.Experience{ID: a.ID, Role: "B"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, s.RemoveExperience("1"))
	roles := []string{}
	for _, e := range s.Document().Experience {
		roles = append(roles, e.Role)
	}
	assert.Equal(t, []string{"A", "B"}, roles)
	assert.ErrorIs(t, s.RemoveExperience("missing"), ErrNotFound)
}

func TestAddSkill_RejectsOutOfRangeLevel(t *testing.T) {
	s, _ := newSession(t, nil)
	var valErr *resume.ValidationError
	_, err := s.AddSkill(resume.Skill{Name: "Go", Level: 6})
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, s.Document().Skills, 2)

	sk, err := s.AddSkill(resume.Skill{Name: "Go", Level: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, sk.ID)
}

func TestUpdatePersonalInfo_OnlyTouchesGivenFields(t *testing.T) {
	s, _ := newSession(t, nil)
	before := s.Document().PersonalInfo
	require.NoError(t, s.UpdatePersonalInfo(PersonalInfoPatch{Title: ptr("Staff Engineer")}))
	after := s.Document().PersonalInfo
	assert.Equal(t, "Staff Engineer", after.Title)
	assert.Equal(t, before.FullName, after.FullName)
	assert.Equal(t, before.Summary, after.Summary)
}

func TestUpdateConfig_Validation(t *testing.T) {
	s, _ := newSession(t, nil)
	before := s.Config()
	err := s.UpdateConfig(ConfigPatch{Spacing: ptr(7), Language: ptr("fr")})
	var valErr *resume.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Errors, 2)
	assert.Equal(t, before, s.Config())
}

func TestProfiles_SelectCreateDelete(t *testing.T) {
	s, _ := newSession(t, nil)

	require.ErrorIs(t, s.SelectProfile("nope"), ErrNotFound)
	assert.Equal(t, profile.DefaultID, s.Config().ActiveProfileID)

	require.NoError(t, s.SelectProfile("builtin-emerald"))
	assert.Equal(t, "#10b981", s.Config().Colors.Primary)

	id, err := s.CreateProfile("Mine")
	require.NoError(t, err)
	assert.Equal(t, id, s.Config().ActiveProfileID)

	var protected *profile.ProtectedResourceError
	require.ErrorAs(t, s.DeleteProfile("builtin-emerald"), &protected)
	assert.Len(t, s.Profiles(), len(profile.Builtins())+1)

	require.NoError(t, s.DeleteProfile(id))
	cfg := s.Config()
	first := profile.Builtins()[0]
	assert.Equal(t, first.ID, cfg.ActiveProfileID)
	assert.Equal(t, first.Colors, cfg.Colors)
}

func TestProfiles_ExportImport(t *testing.T) {
	s, _ := newSession(t, nil)
	_, err := s.CreateProfile("Mine")
	require.NoError(t, err)
	data, err := s.ExportProfiles()
	require.NoError(t, err)

	other, _ := newSession(t, nil)
	n, err := other.ImportProfiles(data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = other.ImportProfiles(data)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = other.ImportProfiles([]byte(`{}`))
	assert.Error(t, err)
}

func TestTableEdit_CommitAndCancel(t *testing.T) {
	s, _ := newSession(t, nil)
	_, err := s.AddTable()
	require.NoError(t, err)

	editID, work, err := s.BeginTableEdit(0)
	require.NoError(t, err)
	assert.Equal(t, "New Table", work.Title)

	work, err = s.EditTable(editID, func(e *table.Editor) error { return e.AddColumn() })
	require.NoError(t, err)
	assert.Len(t, work.Headers, 3)
	assert.Len(t, s.Document().CustomTables[0].Headers, 2)

	committed, err := s.CommitTableEdit(editID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Column 1", "Column 2", "Col 3"}, committed.Headers)
	assert.Equal(t, committed, s.Document().CustomTables[0])

	_, err = s.CommitTableEdit(editID)
	assert.ErrorIs(t, err, ErrEditNotFound)

	editID, _, err = s.BeginTableEdit(0)
	require.NoError(t, err)
	_, err = s.EditTable(editID, func(e *table.Editor) error { return e.SetTitle("Discarded") })
	require.NoError(t, err)
	require.NoError(t, s.CancelTableEdit(editID))
	assert.Equal(t, "New Table", s.Document().CustomTables[0].Title)
}

func TestTableEdit_StaleAfterRemoval(t *testing.T) {
	s, _ := newSession(t, nil)
	_, err := s.AddTable()
	require.NoError(t, err)
	_, err = s.AddTable()
	require.NoError(t, err)

	editID, _, err := s.BeginTableEdit(0)
	require.NoError(t, err)
	require.NoError(t, s.RemoveTable(0))

	_, err = s.CommitTableEdit(editID)
	assert.ErrorIs(t, err, table.ErrStaleEdit)
	assert.Len(t, s.Document().CustomTables, 1)
}

func TestImportWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Year", "Award"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2024", "Best Paper"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	s, _ := newSession(t, nil)
	tbl, err := s.ImportWorkbook(&buf, "awards.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "awards", tbl.Title)
	assert.Equal(t, [][]string{{"2024", "Best Paper"}}, s.Document().CustomTables[0].Rows)
}

func TestSuggestStyle_MergesOnlyOwnedFields(t *testing.T) {
	sg := &stubSuggester{style: suggest.Style{
		TemplateID:      resume.TemplateCreative,
		PrimaryColor:    "#111111",
		SecondaryColor:  "#222222",
		BackgroundColor: "#333333",
		HeadingColor:    "#444444",
		HeadingFont:     suggest.SerifFont,
	}}
	s, _ := newSession(t, sg)
	before := s.Config()

	_, err := s.SuggestStyle(context.Background(), suggest.Image{})
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, resume.TemplateCreative, cfg.TemplateID)
	assert.Equal(t, "#111111", cfg.Colors.Primary)
	assert.Equal(t, "#444444", cfg.Colors.Heading)
	assert.Equal(t, suggest.SerifFont, cfg.Fonts.Heading)
	assert.Equal(t, before.Colors.Text, cfg.Colors.Text)
	assert.Equal(t, before.Fonts.Body, cfg.Fonts.Body)
	assert.Equal(t, before.GlobalDesign, cfg.GlobalDesign)
	assert.Equal(t, "#111111", cfg.Colors.TagBackground, "tag pills follow the new primary")
	assert.Equal(t, style.DefaultItemText, cfg.Colors.TagText)
}

func TestSuggestStyle_FailedCollaboratorLeavesConfigUntouched(t *testing.T) {
	s, store := newSession(t, suggest.NewService(failingGenerator{}, nil))
	require.NoError(t, s.SelectProfile("builtin-crimson"))
	require.NoError(t, s.Flush(context.Background()))
	before := exported(t, s)
	storedBefore, err := store.Load(context.Background(), persist.KeyConfig)
	require.NoError(t, err)

	st, err := s.SuggestStyle(context.Background(), suggest.Image{MIMEType: "image/png"})
	require.ErrorIs(t, err, suggest.ErrUnavailable)
	assert.Equal(t, suggest.Fallback(), st, "the fallback is still offered for display")

	assert.Equal(t, before, exported(t, s))
	assert.Equal(t, "builtin-crimson", s.Config().ActiveProfileID)
	require.NoError(t, s.Flush(context.Background()))
	storedAfter, err := store.Load(context.Background(), persist.KeyConfig)
	require.NoError(t, err)
	assert.Equal(t, storedBefore, storedAfter)
}

func TestSuggestStyle_BusyAndConcurrentEdits(t *testing.T) {
	sg := &stubSuggester{style: suggest.Fallback(), started: make(chan struct{}, 1), unblock: make(chan struct{})}
	s, _ := newSession(t, sg)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.SuggestStyle(context.Background(), suggest.Image{})
		assert.NoError(t, err)
	}()
	<-sg.started

	_, err := s.SuggestStyle(context.Background(), suggest.Image{})
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, s.Busy(BusyStyle))

	// 无关编辑不被阻塞，也不会被合并覆盖
	require.NoError(t, s.UpdateConfig(ConfigPatch{Language: ptr("en")}))
	require.NoError(t, s.UpdatePersonalInfo(PersonalInfoPatch{FullName: ptr("Grace")}))

	close(sg.unblock)
	wg.Wait()

	assert.False(t, s.Busy(BusyStyle))
	assert.Equal(t, "en", s.Config().Language)
	assert.Equal(t, "Grace", s.Document().PersonalInfo.FullName)
	assert.Equal(t, "#3b82f6", s.Config().Colors.Primary)
}

func TestSuggestStyle_AbandonedLeavesStateIdentical(t *testing.T) {
	sg := &stubSuggester{style: suggest.Fallback(), unblock: make(chan struct{})}
	s, _ := newSession(t, sg)
	before := exported(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.SuggestStyle(ctx, suggest.Image{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, before, exported(t, s))
}

func TestImproveText(t *testing.T) {
	sg := &stubSuggester{text: "Led a team of five."}
	s, _ := newSession(t, sg)

	out, err := s.ImproveText(context.Background(), TextTarget{Kind: suggest.KindExperience, ExperienceID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Led a team of five.", out)
	assert.Equal(t, "Led a team of five.", s.Document().Experience[0].Description)
	assert.NotEqual(t, "Led a team of five.", s.Document().PersonalInfo.Summary)

	_, err = s.ImproveText(context.Background(), TextTarget{Kind: suggest.KindExperience, ExperienceID: "gone"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImproveText_TargetDeletedWhileWaiting(t *testing.T) {
	sg := &stubSuggester{text: "new", started: make(chan struct{}, 1), unblock: make(chan struct{})}
	s, _ := newSession(t, sg)

	errc := make(chan error, 1)
	go func() {
		_, err := s.ImproveText(context.Background(), TextTarget{Kind: suggest.KindExperience, ExperienceID: "1"})
		errc <- err
	}()
	<-sg.started
	require.NoError(t, s.RemoveExperience("1"))
	close(sg.unblock)

	assert.ErrorIs(t, <-errc, ErrNotFound)
	assert.Empty(t, s.Document().Experience)
}

func TestPersistAndRestore(t *testing.T) {
	s, store := newSession(t, nil)
	require.NoError(t, s.UpdatePersonalInfo(PersonalInfoPatch{FullName: ptr("Linus")}))
	require.NoError(t, s.UpdateConfig(ConfigPatch{TemplateID: ptr(resume.TemplateClassic)}))
	id, err := s.CreateProfile("Mine")
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))

	raw, err := store.Load(context.Background(), persist.KeyProfiles)
	require.NoError(t, err)
	var stored []profile.Profile
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)

	restored := New(Options{})
	require.NoError(t, restored.Restore(context.Background(), store))
	assert.Equal(t, "Linus", restored.Document().PersonalInfo.FullName)
	assert.Equal(t, resume.TemplateClassic, restored.Config().TemplateID)
	assert.Equal(t, id, restored.Config().ActiveProfileID)
	_, ok := restored.profiles.Get(id)
	assert.True(t, ok)
}

func TestSetSectionStyle_OutOfRangeRejected(t *testing.T) {
	s, _ := newSession(t, nil)
	before := exported(t, s)

	for _, st := range []style.SectionStyle{
		{FontWeight: style.Ptr(style.FontWeight("heavy"))},
		{FontSize: style.Ptr(3.0)},
		{BorderStyle: style.Ptr(style.BorderStyle("double"))},
	} {
		var ve *resume.ValidationError
		require.ErrorAs(t, s.SetSectionStyle("main-header", st), &ve)
		assert.NotEmpty(t, ve.Errors)
	}
	var ve *resume.ValidationError
	require.ErrorAs(t, s.SetImageStyle(&style.ImageStyle{BorderRadius: 60}), &ve)
	assert.Equal(t, before, exported(t, s))
}

func TestSectionStyle_SurvivesPersistAndRestore(t *testing.T) {
	s, store := newSession(t, nil)
	require.NoError(t, s.UpdatePersonalInfo(PersonalInfoPatch{FullName: ptr("Ada")}))
	require.Error(t, s.SetSectionStyle("main-header", style.SectionStyle{FontWeight: style.Ptr(style.FontWeight("heavy"))}))
	require.NoError(t, s.SetSectionStyle("main-header", style.SectionStyle{
		FontWeight: style.Ptr(style.WeightBold),
		FontSize:   style.Ptr(2.0),
	}))
	require.NoError(t, s.Flush(context.Background()))

	restored := New(Options{})
	require.NoError(t, restored.Restore(context.Background(), store))
	doc := restored.Document()
	assert.Equal(t, "Ada", doc.PersonalInfo.FullName)
	st := doc.SectionStyles["main-header"]
	require.NotNil(t, st.FontWeight)
	assert.Equal(t, style.WeightBold, *st.FontWeight)
	require.NotNil(t, st.FontSize)
	assert.Equal(t, 2.0, *st.FontSize)
}

type brokenStore struct{ persist.Store }

func (brokenStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestRestore_CorruptRecordsKeepDefaults(t *testing.T) {
	store := persist.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, persist.KeyDocument, []byte(`not json`)))
	require.NoError(t, store.Save(ctx, persist.KeyConfig, []byte(`[]`)))

	s := New(Options{})
	require.NoError(t, s.Restore(ctx, store))
	assert.Equal(t, resume.DefaultDocument(), s.Document())
	assert.Equal(t, resume.DefaultConfig(), s.Config())

	assert.Error(t, s.Restore(ctx, brokenStore{}))
}

func ptr[T any](v T) *T { return &v }
