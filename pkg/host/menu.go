package host

import "strings"

// MenuOpcode is one instruction in a parsed popup-menu descriptor.
type MenuOpcode int

const (
	// MenuItem appends a selectable entry.
	MenuItem MenuOpcode = iota
	// MenuSeparator appends a separator line.
	MenuSeparator
	// MenuSub appends a submenu and enters it; following instructions
	// belong to the submenu until a matching MenuEndSub.
	MenuSub
	// MenuEndSub closes the innermost open submenu. Its Name/ID/Flags
	// belong to the item that terminates the submenu, mirroring
	// gfx_showmenu's own convention that a "<" item is both the last
	// entry of the submenu and (if not empty) a selectable one.
	MenuEndSub
)

// MenuItemFlag is a bitmask of per-item rendering flags.
type MenuItemFlag uint32

const (
	MenuItemDisabled MenuItemFlag = 1 << 0
	MenuItemChecked  MenuItemFlag = 1 << 1
)

// MenuInstruction is one entry of a parsed menu: an opcode plus the
// fields relevant to it (ID and Name/Flags for MenuItem/MenuSub/
// MenuEndSub, nothing beyond the opcode for MenuSeparator).
type MenuInstruction struct {
	Opcode MenuOpcode
	ID     uint32
	Name   string
	Flags  MenuItemFlag
}

// ParseMenu parses a gfx_showmenu-style descriptor: entries separated by
// "|", each optionally prefixed with "#" (disabled), "!" (checked), ">"
// (opens a submenu named by the rest of the entry) or "<" (closes the
// innermost open submenu; if the entry has a name beyond the marker it is
// also that submenu's last selectable item). An empty entry is a
// separator. IDs are assigned in appearance order to every MenuItem and
// to submenu-closing entries that carry a name, starting from 1, matching
// gfx_showmenu's convention that the return value from a click is the
// 1-based position among selectable entries.
func ParseMenu(text string) []MenuInstruction {
	var out []MenuInstruction
	var nextID uint32 = 1
	depth := 0

	for _, raw := range strings.Split(text, "|") {
		entry := raw
		var flags MenuItemFlag
		for len(entry) > 0 {
			switch entry[0] {
			case '#':
				flags |= MenuItemDisabled
				entry = entry[1:]
				continue
			case '!':
				flags |= MenuItemChecked
				entry = entry[1:]
				continue
			}
			break
		}

		switch {
		case len(entry) > 0 && entry[0] == '>':
			name := entry[1:]
			out = append(out, MenuInstruction{Opcode: MenuSub, ID: 0, Name: name, Flags: flags})
			depth++
		case len(entry) > 0 && entry[0] == '<':
			name := entry[1:]
			var id uint32
			if name != "" {
				id = nextID
				nextID++
			}
			out = append(out, MenuInstruction{Opcode: MenuEndSub, ID: id, Name: name, Flags: flags})
			if depth > 0 {
				depth--
			}
		case entry == "" && flags == 0:
			out = append(out, MenuInstruction{Opcode: MenuSeparator})
		default:
			out = append(out, MenuInstruction{Opcode: MenuItem, ID: nextID, Name: entry, Flags: flags})
			nextID++
		}
	}

	return out
}
