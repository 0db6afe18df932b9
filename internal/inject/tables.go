package inject

// Application and role tables. Each set is plain data; Table.Decide walks
// them in priority order and the first match wins.

// Role names reported by the accessibility API.
const (
	RoleComboBox    = "AXComboBox"
	RoleSearchField = "AXSearchField"
	RoleTextField   = "AXTextField"
	RoleTextArea    = "AXTextArea"
)

// Set is a set of application ids or role names.
type Set map[string]struct{}

// NewSet returns a Set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports whether k is in s.
func (s Set) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Table is the strategy decision data.
type Table struct {
	// Overrides force a decision for an application id.
	Overrides map[string]Decision

	SelectionRoles Set
	// SearchOverlays are system search overlays written directly.
	SearchOverlays Set
	// AddressBars maps browsers to the strategy used in their text fields.
	AddressBars map[string]Strategy
	Instant     Set
	Terminals   Set
	Electron    Set
	// DuplicateGlyph lists applications whose autocomplete duplicates the
	// first typed glyph; Autocomplete uses a repositioning sequence there.
	DuplicateGlyph Set
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	return &Table{
		Overrides:      map[string]Decision{},
		SelectionRoles: NewSet(RoleComboBox, RoleSearchField),
		SearchOverlays: NewSet("com.apple.Spotlight"),
		AddressBars: map[string]Strategy{
			"com.google.Chrome":          Selection,
			"com.google.Chrome.canary":   Selection,
			"com.brave.Browser":          Selection,
			"com.microsoft.edgemac":      Selection,
			"company.thebrowser.Browser": Selection,
			"com.vivaldi.Vivaldi":        Selection,
			"com.operasoftware.Opera":    Selection,
			"org.chromium.Chromium":      Selection,
			"com.apple.Safari":           AXDirect,
			"org.mozilla.firefox":        AXDirect,
		},
		Instant: NewSet(
			"com.microsoft.VSCode",
			"dev.zed.Zed",
			"com.sublimetext.4",
			"com.jetbrains.intellij",
			"com.apple.TextEdit",
			"com.apple.Notes",
			"com.apple.MobileSMS",
			"ru.keepcoder.Telegram",
			"com.tdesktop.Telegram",
			"net.whatsapp.WhatsApp",
			"com.apple.dt.Xcode",
		),
		Terminals: NewSet(
			"com.apple.Terminal",
			"com.googlecode.iterm2",
			"net.kovidgoyal.kitty",
			"org.alacritty",
			"com.github.wez.wezterm",
			"dev.warp.Warp-Stable",
			"com.mitchellh.ghostty",
		),
		Electron: NewSet(
			"com.tinyspeck.slackmacgap",
			"com.hnc.Discord",
			"notion.id",
			"com.microsoft.teams2",
			"com.microsoft.teams",
		),
		DuplicateGlyph: NewSet("org.mozilla.firefox"),
	}
}

// Override forces strategy s for appID with that strategy's default delays.
func (t *Table) Override(appID string, s Strategy) {
	if t.Overrides == nil {
		t.Overrides = map[string]Decision{}
	}
	t.Overrides[appID] = Decision{Strategy: s, Delays: ProfileFor(s), Rule: "override"}
}

// Decide evaluates the table for a focused element role and owning app.
func (t *Table) Decide(role, appID string) Decision {
	d := t.decide(role, appID)
	d.Role, d.AppID = role, appID
	return d
}

func (t *Table) decide(role, appID string) Decision {
	if d, ok := t.Overrides[appID]; ok {
		return d
	}
	if t.SelectionRoles.Has(role) {
		return Decision{Strategy: Selection, Delays: NoDelays, Rule: "role"}
	}
	if t.SearchOverlays.Has(appID) {
		return Decision{Strategy: AXDirect, Delays: NoDelays, Rule: "search_overlay"}
	}
	if s, ok := t.AddressBars[appID]; ok && role == RoleTextField {
		return Decision{Strategy: s, Delays: NoDelays, Rule: "address_bar"}
	}
	if t.Instant.Has(appID) {
		return Decision{Strategy: Instant, Delays: NoDelays, Rule: "instant"}
	}
	if t.Terminals.Has(appID) {
		return Decision{Strategy: Slow, Delays: TerminalDelays, Rule: "terminal"}
	}
	if t.Electron.Has(appID) {
		return Decision{Strategy: Slow, Delays: ElectronDelays, Rule: "electron"}
	}
	return Decision{Strategy: Fast, Delays: FastDelays, Rule: "default"}
}

// IsDuplicateGlyphApp reports whether appID needs the repositioning sequence.
func (t *Table) IsDuplicateGlyphApp(appID string) bool {
	return t.DuplicateGlyph.Has(appID)
}
