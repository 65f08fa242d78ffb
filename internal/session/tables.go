package session

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"smartCV/internal/resume"
	"smartCV/internal/table"
)

// AddTable 追加一张初始表格。
func (s *Session) AddTable() (table.Table, error) {
	t := table.New(resume.NewID())
	err := s.mutateDocument(func(doc *resume.Document) error {
		doc.CustomTables = append(doc.CustomTables, t.Clone())
		return nil
	})
	return t, err
}

// RemoveTable 删除 index 处的表格。
func (s *Session) RemoveTable(index int) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		if index < 0 || index >= len(doc.CustomTables) {
			return fmt.Errorf("remove table %d: %w", index, table.ErrTableRange)
		}
		doc.CustomTables = append(doc.CustomTables[:index:index], doc.CustomTables[index+1:]...)
		return nil
	})
}

// ImportWorkbook 读取表格文件的第一个工作表并追加为新表格。
func (s *Session) ImportWorkbook(r io.Reader, filename string) (table.Table, error) {
	records, err := table.ReadWorkbook(r)
	if err != nil {
		return table.Table{}, err
	}
	t, err := table.FromRows(resume.NewID(), table.TitleFromFilename(filename), records)
	if err != nil {
		return table.Table{}, err
	}
	err = s.mutateDocument(func(doc *resume.Document) error {
		doc.CustomTables = append(doc.CustomTables, t.Clone())
		return nil
	})
	return t, err
}

// BeginTableEdit 打开 index 处表格的编辑会话，返回编辑 id 与工作副本。
func (s *Session) BeginTableEdit(index int) (string, table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ed, err := table.Edit(s.doc.CustomTables, index)
	if err != nil {
		return "", table.Table{}, err
	}
	id := uuid.NewString()
	s.edits[id] = &tableEdit{editor: ed, tableID: s.doc.CustomTables[index].ID}
	return id, ed.Table(), nil
}

// EditTable 在工作副本上执行 op，文档不变。
func (s *Session) EditTable(editID string, op func(*table.Editor) error) (table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edits[editID]
	if !ok {
		return table.Table{}, ErrEditNotFound
	}
	if err := op(e.editor); err != nil {
		return table.Table{}, err
	}
	return e.editor.Table(), nil
}

// CommitTableEdit 把工作副本写回原位置。原表格已被删除或替换时返回 table.ErrStaleEdit。
func (s *Session) CommitTableEdit(editID string) (table.Table, error) {
	var committed table.Table
	err := s.mutateDocument(func(doc *resume.Document) error {
		e, ok := s.edits[editID]
		if !ok {
			return ErrEditNotFound
		}
		delete(s.edits, editID)

		idx := e.editor.Index()
		if idx >= len(doc.CustomTables) || doc.CustomTables[idx].ID != e.tableID {
			e.editor.Cancel()
			return table.ErrStaleEdit
		}
		tables, err := e.editor.Commit(doc.CustomTables)
		if err != nil {
			return err
		}
		doc.CustomTables = tables
		committed = tables[idx].Clone()
		return nil
	})
	return committed, err
}

// CancelTableEdit 丢弃工作副本。
func (s *Session) CancelTableEdit(editID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edits[editID]
	if !ok {
		return ErrEditNotFound
	}
	e.editor.Cancel()
	delete(s.edits, editID)
	return nil
}
