// Package export writes an xlsx snapshot of the store for offline review.
package export

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"hellmusic/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetUsers  = "Users"
	SheetChats  = "Chats"
	SheetAccess = "Access"

	dateLayout = "2006-01-02 15:04:05"
)

// Source is what the snapshot reads from the database facade.
type Source interface {
	GetAllUsers(ctx context.Context) iter.Seq2[*models.User, error]
	GetAllChats(ctx context.Context) iter.Seq2[*models.Chat, error]
	Members(ctx context.Context, set models.SetName) ([]int64, error)
}

// Snapshot writes musicdb_<timestamp>.xlsx into dir and returns its path.
func Snapshot(ctx context.Context, src Source, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("error creating style: %w", err)
	}

	if err := writeUsers(ctx, f, src, headerStyle); err != nil {
		return "", err
	}
	if err := writeChats(ctx, f, src, headerStyle); err != nil {
		return "", err
	}
	if err := writeAccess(ctx, f, src, headerStyle); err != nil {
		return "", err
	}

	if idx, err := f.GetSheetIndex(SheetUsers); err == nil {
		f.SetActiveSheet(idx)
	}
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("musicdb_%s.xlsx", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}

func newSheet(f *excelize.File, name string, style int, headers ...string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", name, err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(name, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(name, "A1", last, style)
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(name, "A", lastCol, 20)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return f.SetSheetRow(sheet, cell, &values)
}

func writeUsers(ctx context.Context, f *excelize.File, src Source, style int) error {
	if err := newSheet(f, SheetUsers, style, "user_id", "join_date", "songs_played", "level"); err != nil {
		return err
	}
	row := 2
	for u, err := range src.GetAllUsers(ctx) {
		if err != nil {
			return fmt.Errorf("error reading users: %w", err)
		}
		if err := setRow(f, SheetUsers, row, u.UserID, u.JoinDate.Format(dateLayout), u.SongsPlayed, u.Level); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeChats(ctx context.Context, f *excelize.File, src Source, style int) error {
	if err := newSheet(f, SheetChats, style, "chat_id", "join_date"); err != nil {
		return err
	}
	row := 2
	for c, err := range src.GetAllChats(ctx) {
		if err != nil {
			return fmt.Errorf("error reading chats: %w", err)
		}
		if err := setRow(f, SheetChats, row, c.ChatID, c.JoinDate.Format(dateLayout)); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeAccess(ctx context.Context, f *excelize.File, src Source, style int) error {
	if err := newSheet(f, SheetAccess, style, "set", "member_id"); err != nil {
		return err
	}
	row := 2
	for _, set := range models.AllSets {
		members, err := src.Members(ctx, set)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", set, err)
		}
		for _, id := range members {
			if err := setRow(f, SheetAccess, row, string(set), id); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
