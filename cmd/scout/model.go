package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssnnd0/Saxon-Scout/client"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

const submittedBannerFor = 2 * time.Second

type phase int

const (
	phaseLogin phase = iota
	phaseLoading
	phaseForm
)

// fieldRef is one focusable row on the current step. Step 0 uses synthetic
// refs for the fixed match-info fields; category steps mirror the config.
type fieldRef struct {
	id      string
	label   string
	ftype   scoutform.FieldType
	options []scoutform.Option
}

type model struct {
	api       *client.API
	store     *client.EntryStore
	syncer    *client.SyncCoordinator
	scoutName string

	phase   phase
	offline bool
	width   int

	// login screen
	username   textinput.Model
	password   textinput.Model
	loginFocus int
	loginErr   string

	// form screen
	season   *storage.Season
	form     *scoutform.Form
	input    textinput.Model
	fieldIdx int
	banner   string
	syncLine string
	loadErr  string
}

type loginResultMsg struct{ err error }

type sessionLoadedMsg struct {
	season  *storage.Season
	cfg     *scoutform.Config
	offline bool
	err     error
}

type submitDoneMsg struct {
	entry *scoutform.Entry
	err   error
}

type syncDoneMsg struct {
	result *client.SyncResult
	err    error
}

type bannerExpiredMsg struct{}

func newModel(api *client.API, store *client.EntryStore, scoutName string) *model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	return &model{
		api:       api,
		store:     store,
		syncer:    client.NewSyncCoordinator(store, api),
		scoutName: scoutName,
		phase:     phaseLogin,
		username:  username,
		password:  password,
		input:     textinput.New(),
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseLogin:
			return m.updateLogin(msg)
		case phaseForm:
			return m.updateForm(msg)
		}
		return m, nil

	case loginResultMsg:
		if msg.err != nil && !client.IsOffline(msg.err) {
			m.loginErr = msg.err.Error()
			return m, nil
		}
		// Offline login falls through to the cached config; entries queue
		// locally until the server is reachable again.
		m.offline = client.IsOffline(msg.err)
		m.phase = phaseLoading
		return m, m.loadSessionCmd()

	case sessionLoadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			m.phase = phaseLogin
			return m, nil
		}
		m.offline = msg.offline
		m.season = msg.season
		m.form = scoutform.NewForm(msg.cfg, scoutform.Context{
			SeasonID:  msg.cfg.SeasonID,
			ScoutName: m.scoutName,
		})
		m.phase = phaseForm
		m.syncFocus()
		return m, nil

	case submitDoneMsg:
		m.form.FinishSubmit(msg.err)
		if msg.err != nil {
			return m, nil
		}
		if msg.entry != nil && !msg.entry.Synced {
			m.banner = "Saved locally. Will sync when the server is back."
			m.offline = true
		} else {
			m.banner = "Entry submitted!"
			m.offline = false
		}
		return m, tea.Tick(submittedBannerFor, func(time.Time) tea.Msg {
			return bannerExpiredMsg{}
		})

	case bannerExpiredMsg:
		m.banner = ""
		m.form.Reset()
		m.fieldIdx = 0
		m.syncFocus()
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.syncLine = fmt.Sprintf("Sync failed: %v", msg.err)
			return m, nil
		}
		if msg.result.Pushed == 0 {
			m.syncLine = "Nothing to sync."
		} else {
			m.syncLine = fmt.Sprintf("Synced %d queued entries.", msg.result.Pushed)
			m.offline = false
		}
		return m, nil
	}

	return m, m.updateInputs(msg)
}

func (m *model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (m *model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.username.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.username.Blur()
		}
		return m, nil
	case "enter":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.password.Focus()
			m.username.Blur()
			return m, nil
		}
		m.loginErr = ""
		return m, m.loginCmd(m.username.Value(), m.password.Value())
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.Status() == scoutform.StatusSubmitting ||
		m.form.Status() == scoutform.StatusSubmitted {
		return m, nil
	}
	if m.form.Status() == scoutform.StatusFailed {
		m.form.Retry()
	}

	refs := m.stepFields()
	var ref fieldRef
	if len(refs) > 0 {
		ref = refs[m.fieldIdx]
	}

	switch msg.String() {
	case "tab", "down":
		m.commitInput(ref)
		m.moveFocus(refs, 1)
		return m, nil
	case "shift+tab", "up":
		m.commitInput(ref)
		m.moveFocus(refs, -1)
		return m, nil
	case "ctrl+n":
		m.commitInput(ref)
		if m.form.Next() {
			m.fieldIdx = 0
			m.syncFocus()
		}
		return m, nil
	case "ctrl+p":
		m.commitInput(ref)
		m.form.Prev()
		m.fieldIdx = 0
		m.syncFocus()
		return m, nil
	case "ctrl+s":
		m.commitInput(ref)
		return m, m.submitCmd()
	case "ctrl+y":
		m.syncLine = "Syncing..."
		return m, m.syncCmd()
	case "enter":
		m.commitInput(ref)
		if m.fieldIdx == len(refs)-1 {
			if m.form.OnLastStep() {
				return m, m.submitCmd()
			}
			if m.form.Next() {
				m.fieldIdx = 0
				m.syncFocus()
			}
			return m, nil
		}
		m.moveFocus(refs, 1)
		return m, nil
	case "left", "right":
		if len(ref.options) > 0 {
			m.cycleOption(ref, msg.String() == "right")
			return m, nil
		}
	case " ":
		if ref.ftype == scoutform.FieldBoolean {
			current, _ := m.currentValue(ref).(bool)
			m.form.SetValue(ref.id, !current)
			return m, nil
		}
	case "1", "2", "3", "4", "5":
		if ref.ftype == scoutform.FieldRating {
			n, _ := strconv.Atoi(msg.String())
			m.form.SetValue(ref.id, n)
			return m, nil
		}
	}

	if isTextual(ref.ftype) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// stepFields builds the focusable rows for the current step.
func (m *model) stepFields() []fieldRef {
	if m.form.Step() == 0 {
		return []fieldRef{
			{id: "teamNumber", label: "Team Number", ftype: scoutform.FieldText},
			{id: "matchNumber", label: "Match Number", ftype: scoutform.FieldText},
			{id: "alliance", label: "Alliance", ftype: scoutform.FieldRadio, options: []scoutform.Option{
				{Value: scoutform.AllianceRed, Label: "Red"},
				{Value: scoutform.AllianceBlue, Label: "Blue"},
			}},
		}
	}
	cat := m.form.Category()
	if cat == nil {
		return nil
	}
	refs := make([]fieldRef, 0, len(cat.Fields))
	for _, f := range cat.Fields {
		refs = append(refs, fieldRef{id: f.ID, label: f.Label, ftype: f.Type, options: f.Options})
	}
	return refs
}

func (m *model) moveFocus(refs []fieldRef, dir int) {
	if len(refs) == 0 {
		return
	}
	m.fieldIdx = (m.fieldIdx + dir + len(refs)) % len(refs)
	m.syncFocus()
}

// syncFocus loads the focused field's current value into the shared text
// input, or blurs it for non-textual fields.
func (m *model) syncFocus() {
	refs := m.stepFields()
	if len(refs) == 0 {
		m.input.Blur()
		return
	}
	if m.fieldIdx >= len(refs) {
		m.fieldIdx = 0
	}
	ref := refs[m.fieldIdx]
	if !isTextual(ref.ftype) {
		m.input.Blur()
		return
	}
	m.input.SetValue(valueText(m.currentValue(ref)))
	m.input.CursorEnd()
	m.input.Focus()
}

// commitInput parses the shared text input into the focused field. Parse
// failures leave the previous value in place; the raw text stays visible so
// the scout can fix it.
func (m *model) commitInput(ref fieldRef) {
	if !isTextual(ref.ftype) {
		return
	}
	raw := m.input.Value()
	if ref.id == "teamNumber" || ref.id == "matchNumber" {
		m.form.SetValue(ref.id, strings.TrimSpace(raw))
		return
	}
	v, err := scoutform.ParseValue(scoutform.Field{ID: ref.id, Type: ref.ftype, Options: ref.options}, raw)
	if err != nil {
		return
	}
	m.form.SetValue(ref.id, v)
}

func (m *model) cycleOption(ref fieldRef, forward bool) {
	current := valueText(m.currentValue(ref))
	idx := 0
	for i, o := range ref.options {
		if o.Value == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(ref.options)
	} else {
		idx = (idx - 1 + len(ref.options)) % len(ref.options)
	}
	m.form.SetValue(ref.id, ref.options[idx].Value)
}

func (m *model) currentValue(ref fieldRef) any {
	draft := m.form.Draft()
	switch ref.id {
	case "teamNumber":
		return draft.TeamNumber
	case "matchNumber":
		return draft.MatchNumber
	case "alliance":
		return draft.Alliance
	}
	return draft.Fields[ref.id]
}

func (m *model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := m.api.Login(ctx, username, password)
		return loginResultMsg{err: err}
	}
}

// loadSessionCmd fetches the current season and its config, caching the
// config locally. Offline it falls back to the cached copy.
func (m *model) loadSessionCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		season, err := m.api.CurrentSeason(ctx)
		if err == nil {
			cfg, cfgErr := m.api.SeasonConfig(ctx, season.ID)
			if cfgErr != nil {
				return sessionLoadedMsg{err: cfgErr}
			}
			if saveErr := m.store.SaveConfig(cfg); saveErr != nil {
				return sessionLoadedMsg{err: saveErr}
			}
			return sessionLoadedMsg{season: season, cfg: cfg}
		}
		if !client.IsOffline(err) {
			return sessionLoadedMsg{err: err}
		}

		cfg, loadErr := m.store.LoadConfig()
		if loadErr != nil {
			return sessionLoadedMsg{err: loadErr}
		}
		if cfg == nil {
			return sessionLoadedMsg{err: fmt.Errorf("offline and no cached scouting config; connect once first")}
		}
		return sessionLoadedMsg{cfg: cfg, offline: true}
	}
}

func (m *model) submitCmd() tea.Cmd {
	snapshot, err := m.form.BeginSubmit()
	if err != nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		stored, err := m.store.SubmitEntry(ctx, snapshot)
		return submitDoneMsg{entry: stored, err: err}
	}
}

func (m *model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := m.syncer.Sync(ctx)
		return syncDoneMsg{result: result, err: err}
	}
}

func isTextual(t scoutform.FieldType) bool {
	switch t {
	case scoutform.FieldText, scoutform.FieldLongText, scoutform.FieldNumber:
		return true
	}
	return false
}

func valueText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
