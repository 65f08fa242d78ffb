// Package profile 管理配色方案：内置方案只读，用户方案可增删与导入导出。
package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartCV/internal/resume"
	"smartCV/internal/style"
)

// BuiltinPrefix 是内置方案保留的 id 前缀，用户方案不会使用它。
const BuiltinPrefix = "builtin-"

// Profile 是一组命名的主题色。
type Profile struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Colors style.Palette `json:"colors"`
}

// ProtectedResourceError 表示试图修改或删除内置方案。
type ProtectedResourceError struct {
	ID string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("color profile %q is built in and cannot be modified", e.ID)
}

// Registry 是配色方案目录，并发安全。
type Registry struct {
	mu      sync.RWMutex
	builtin []Profile
	user    []Profile
	now     func() time.Time
}

// NewRegistry 创建只包含内置方案的目录。
func NewRegistry() *Registry {
	return &Registry{builtin: Builtins(), now: time.Now}
}

// IsBuiltin reports whether id is reserved for a built-in profile.
func IsBuiltin(id string) bool {
	return strings.HasPrefix(id, BuiltinPrefix)
}

// List 返回内置方案，后接用户方案，保持插入顺序。
func (r *Registry) List() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Profile, 0, len(r.builtin)+len(r.user))
	out = append(out, r.builtin...)
	return append(out, r.user...)
}

// User 返回用户方案副本，用于持久化。
func (r *Registry) User() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Profile{}, r.user...)
}

// First 返回第一个内置方案，删除当前方案后以它兜底。
func (r *Registry) First() Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtin[0]
}

// Get 按 id 查找方案。
func (r *Registry) Get(id string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(id)
}

// Select 按值返回方案颜色；找不到时 ok 为 false，调用方保留原选择。
func (r *Registry) Select(id string) (style.Palette, bool) {
	p, ok := r.Get(id)
	if !ok {
		return style.Palette{}, false
	}
	return p.Colors, true
}

// Create 追加一个用户方案并返回新 id。
func (r *Registry) Create(name string, colors style.Palette) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for r.exists(id) {
		id = r.newID()
	}
	r.user = append(r.user, Profile{ID: id, Name: name, Colors: withTagDefaults(colors)})
	return id
}

// Delete 删除用户方案。内置方案返回 *ProtectedResourceError，未知 id 不做任何事。
func (r *Registry) Delete(id string) error {
	if IsBuiltin(id) {
		return &ProtectedResourceError{ID: id}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.user {
		if p.ID == id {
			r.user = append(r.user[:i:i], r.user[i+1:]...)
			return nil
		}
	}
	return nil
}

// ExportUser 把所有用户方案序列化为 JSON 数组，不含内置方案。
func (r *Registry) ExportUser() ([]byte, error) {
	data, err := json.MarshalIndent(r.User(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profiles: %w", err)
	}
	return data, nil
}

// ImportUser 解析方案数组，丢弃缺字段或 id 已存在的条目，返回实际新增数量。
// 只有文档本身不是 JSON 数组时才返回错误。
func (r *Registry) ImportUser(data []byte) (int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, &resume.ParseError{Cause: fmt.Errorf("profiles document must be a JSON array: %w", err)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, item := range raw {
		p, ok := parseProfile(item)
		if !ok || IsBuiltin(p.ID) || r.exists(p.ID) {
			continue
		}
		r.user = append(r.user, p)
		added++
	}
	return added, nil
}

// Restore 用持久化记录替换用户方案，规则与导入相同。
func (r *Registry) Restore(data []byte) (int, error) {
	r.mu.Lock()
	r.user = nil
	r.mu.Unlock()
	return r.ImportUser(data)
}

func (r *Registry) find(id string) (Profile, bool) {
	for _, p := range r.builtin {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range r.user {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

func (r *Registry) exists(id string) bool {
	_, ok := r.find(id)
	return ok
}

func (r *Registry) newID() string {
	millis := strconv.FormatInt(r.now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "custom-" + millis + "-" + suffix
}

// parseProfile 只接受 id、name、colors 齐全的条目。
func parseProfile(item json.RawMessage) (Profile, bool) {
	var head struct {
		ID     *string          `json:"id"`
		Name   *string          `json:"name"`
		Colors *json.RawMessage `json:"colors"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return Profile{}, false
	}
	if head.ID == nil || *head.ID == "" || head.Name == nil || head.Colors == nil {
		return Profile{}, false
	}
	var colors style.Palette
	if err := json.Unmarshal(*head.Colors, &colors); err != nil {
		return Profile{}, false
	}
	if colors.Primary == "" {
		return Profile{}, false
	}
	return Profile{ID: *head.ID, Name: *head.Name, Colors: withTagDefaults(colors)}, true
}

func withTagDefaults(p style.Palette) style.Palette {
	if p.TagBackground == "" {
		p.TagBackground = p.Primary
	}
	if p.TagText == "" {
		p.TagText = style.DefaultItemText
	}
	return p
}
