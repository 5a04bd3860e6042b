package ui

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
)

const cardPreviewLen = 24

func cardPreview(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= cardPreviewLen {
		return text
	}
	return string(runes[:cardPreviewLen-1]) + "…"
}

// RenderCardList builds the card manager for a deck: every card on its own
// row with edit and delete buttons.
func RenderCardList(deck flashcard.Deck, cards []flashcard.Card) (string, *models.InlineKeyboardMarkup, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cards in %s\n", deck.Name)
	if len(cards) == 0 {
		sb.WriteString("\nNo cards yet. Add one with /newcard.")
	}

	var rows [][]models.InlineKeyboardButton
	for i, card := range cards {
		fmt.Fprintf(&sb, "\n%d. %s → %s", i+1, card.Front, card.Back)

		editData, err := BuildCardCallback(CardOpEdit, card.ID)
		if err != nil {
			return "", nil, err
		}
		deleteData, err := BuildCardCallback(CardOpDelete, card.ID)
		if err != nil {
			return "", nil, err
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "✏️ " + cardPreview(card.Front), CallbackData: editData},
			{Text: "🗑", CallbackData: deleteData},
		})
	}

	return sb.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}, nil
}
