package ui

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
)

// Palette colors rendered as emoji, since Telegram buttons cannot show hex
// colors. Unknown colors (or dangling tag ids) fall back to a plain label.
var colorEmoji = map[string]string{
	"#646cff": "🟣",
	"#74ffb3": "🟢",
	"#ff6464": "🔴",
	"#ffb364": "🟠",
	"#64b3ff": "🔵",
	"#b364ff": "🟪",
}

func tagLabel(tag flashcard.Tag) string {
	if emoji, ok := colorEmoji[tag.Color]; ok {
		return emoji + " " + tag.Name
	}
	return tag.Name
}

// RenderDeckList builds the deck browser message and keyboard. Decks are
// assumed to be already filtered; counts come from the card-count view. Tag
// ids on decks that no longer resolve to a tag are skipped silently.
func RenderDeckList(decks []flashcard.Deck, tags []flashcard.Tag, counts map[string]int, selectedDeckID, query string, tagFilter []string) (string, *models.InlineKeyboardMarkup, error) {
	tagsByID := make(map[string]flashcard.Tag, len(tags))
	for _, tag := range tags {
		tagsByID[tag.ID] = tag
	}

	var sb strings.Builder
	if strings.TrimSpace(query) != "" {
		fmt.Fprintf(&sb, "Decks matching %q\n", strings.TrimSpace(query))
	} else {
		sb.WriteString("Your decks\n")
	}
	if len(decks) == 0 {
		sb.WriteString("\nNothing here yet. Use /newdeck to create one.")
	}

	var rows [][]models.InlineKeyboardButton
	for _, deck := range decks {
		marker := "  "
		if deck.ID == selectedDeckID {
			marker = "▶ "
		}
		line := fmt.Sprintf("\n%s%s — %d card(s)", marker, deck.Name, counts[deck.ID])
		if deck.Description != "" {
			line += "\n    " + deck.Description
		}
		var deckTags []string
		for _, id := range deck.TagIDs {
			if tag, ok := tagsByID[id]; ok {
				deckTags = append(deckTags, tagLabel(tag))
			}
		}
		if len(deckTags) > 0 {
			line += "\n    " + strings.Join(deckTags, " ")
		}
		sb.WriteString(line)

		selectData, err := BuildDeckCallback(DeckOpSelect, deck.ID)
		if err != nil {
			return "", nil, err
		}
		practiceData, err := BuildDeckCallback(DeckOpPractice, deck.ID)
		if err != nil {
			return "", nil, err
		}
		name := deck.Name
		if deck.ID == selectedDeckID {
			name = "✓ " + name
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: name, CallbackData: selectData},
			{Text: "Practice", CallbackData: practiceData},
		})

		if deck.ID == selectedDeckID {
			cardData, err := BuildDeckCallback(DeckOpNewCard, deck.ID)
			if err != nil {
				return "", nil, err
			}
			editData, err := BuildDeckCallback(DeckOpEdit, deck.ID)
			if err != nil {
				return "", nil, err
			}
			deleteData, err := BuildDeckCallback(DeckOpDelete, deck.ID)
			if err != nil {
				return "", nil, err
			}
			rows = append(rows, []models.InlineKeyboardButton{
				{Text: "➕ Card", CallbackData: cardData},
				{Text: "✏️ Edit", CallbackData: editData},
				{Text: "🗑 Delete", CallbackData: deleteData},
			})
		}
	}

	filterRows, err := buildTagFilterRows(tags, tagFilter)
	if err != nil {
		return "", nil, err
	}
	rows = append(rows, filterRows...)

	return sb.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}, nil
}

func buildTagFilterRows(tags []flashcard.Tag, tagFilter []string) ([][]models.InlineKeyboardButton, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	active := make(map[string]bool, len(tagFilter))
	for _, id := range tagFilter {
		active[id] = true
	}

	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, tag := range tags {
		data, err := BuildDeckCallback(DeckOpTagFilter, tag.ID)
		if err != nil {
			return nil, err
		}
		label := tagLabel(tag)
		if active[tag.ID] {
			label = "✓ " + label
		}
		row = append(row, models.InlineKeyboardButton{Text: label, CallbackData: data})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if len(tagFilter) > 0 {
		clearData, err := BuildDeckCallback(DeckOpTagClear, "")
		if err != nil {
			return nil, err
		}
		rows = append(rows, []models.InlineKeyboardButton{{Text: "Clear filters", CallbackData: clearData}})
	}
	return rows, nil
}

// RenderPracticeCard builds the practice view for the current card side.
func RenderPracticeCard(card flashcard.Card, index, total int, flipped bool) (string, *models.InlineKeyboardMarkup, error) {
	var text string
	if flipped {
		text = fmt.Sprintf("Card %d / %d\n\nAnswer:\n%s", index+1, total, card.Back)
	} else {
		text = fmt.Sprintf("Card %d / %d\n\nQuestion:\n%s\n\nTap Flip to reveal the answer.", index+1, total, card.Front)
	}

	flipData, err := BuildPracticeCallback(PracticeOpFlip)
	if err != nil {
		return "", nil, err
	}
	prevData, err := BuildPracticeCallback(PracticeOpPrev)
	if err != nil {
		return "", nil, err
	}
	nextData, err := BuildPracticeCallback(PracticeOpNext)
	if err != nil {
		return "", nil, err
	}
	exitData, err := BuildPracticeCallback(PracticeOpExit)
	if err != nil {
		return "", nil, err
	}

	flipLabel := "Show answer"
	if flipped {
		flipLabel = "Show question"
	}
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "⬅️", CallbackData: prevData},
				{Text: flipLabel, CallbackData: flipData},
				{Text: "➡️", CallbackData: nextData},
			},
			{
				{Text: "Exit practice", CallbackData: exitData},
			},
		},
	}
	return text, keyboard, nil
}

// RenderDeleteDeckConfirm builds the delete-confirmation prompt, including
// the number of cards the cascade will remove.
func RenderDeleteDeckConfirm(deck flashcard.Deck, cardCount int) (string, *models.InlineKeyboardMarkup, error) {
	plural := "s"
	if cardCount == 1 {
		plural = ""
	}
	text := fmt.Sprintf(
		"Delete deck %q? This will also delete %d card%s in this deck.",
		deck.Name, cardCount, plural,
	)

	confirmData, err := BuildDeckCallback(DeckOpDeleteConfirm, deck.ID)
	if err != nil {
		return "", nil, err
	}
	cancelData, err := BuildDeckCallback(DeckOpDeleteCancel, "")
	if err != nil {
		return "", nil, err
	}
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Delete", CallbackData: confirmData},
				{Text: "Cancel", CallbackData: cancelData},
			},
		},
	}
	return text, keyboard, nil
}

// RenderTagManager builds the tag list plus a palette row for creating a
// new tag: picking a color arms the name prompt.
func RenderTagManager(tags []flashcard.Tag) (string, *models.InlineKeyboardMarkup, error) {
	var sb strings.Builder
	sb.WriteString("Tags\n")
	if len(tags) == 0 {
		sb.WriteString("\nNo tags yet. Pick a color below to create your first tag.")
	} else {
		for _, tag := range tags {
			sb.WriteString("\n" + tagLabel(tag))
		}
		sb.WriteString("\n\nPick a color below to create a new tag, or delete one.")
	}

	var rows [][]models.InlineKeyboardButton
	for _, tag := range tags {
		data, err := BuildTagDeleteCallback(tag.ID)
		if err != nil {
			return "", nil, err
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "🗑 " + tag.Name, CallbackData: data},
		})
	}

	var palette []models.InlineKeyboardButton
	for i, color := range flashcard.TagColors {
		data, err := BuildTagNewCallback(i)
		if err != nil {
			return "", nil, err
		}
		label := color
		if emoji, ok := colorEmoji[color]; ok {
			label = emoji
		}
		palette = append(palette, models.InlineKeyboardButton{Text: label, CallbackData: data})
	}
	rows = append(rows, palette)

	return sb.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}, nil
}
