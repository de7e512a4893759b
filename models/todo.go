package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToDo là một công việc trong danh sách của một user
type ToDo struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	IsDone bool   `json:"isDone"`
	UserID string `json:"userId"`
}

// Collection ánh xạ id -> ToDo, lưu trong flag của user
type Collection map[string]ToDo

// Clone trả về bản sao nông của collection
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for id, todo := range c {
		out[id] = todo
	}
	return out
}

// Merge ghi đè từng key của patch vào collection (thay thế cả entry, không merge field)
func (c Collection) Merge(patch Collection) {
	for id, todo := range patch {
		c[id] = todo
	}
}

// Draft là dữ liệu đầu vào khi tạo todo mới
type Draft struct {
	Label  string `json:"label"`
	IsDone *bool  `json:"isDone,omitempty"`
}

// Patch áp dụng trực tiếp vào collection của một user
type Patch struct {
	Set    Collection `json:"set,omitempty"`
	Remove []string   `json:"remove,omitempty"`
}

// DeletionPrefix là quy ước "-=key" của flag storage: xoá key thay vì gán null
const DeletionPrefix = "-="

// ParseFlagPatch chuyển payload kiểu flag ({"id": {...}, "-=id": null}) sang Patch
func ParseFlagPatch(body []byte) (Patch, error) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Patch{}, fmt.Errorf("invalid patch: %w", err)
	}

	patch := Patch{}
	for key, value := range raw {
		if id, ok := strings.CutPrefix(key, DeletionPrefix); ok {
			patch.Remove = append(patch.Remove, id)
			continue
		}

		var todo ToDo
		if err := json.Unmarshal(value, &todo); err != nil {
			return Patch{}, fmt.Errorf("invalid todo %q: %w", key, err)
		}
		if patch.Set == nil {
			patch.Set = Collection{}
		}
		patch.Set[key] = todo
	}
	return patch, nil
}

// Change mô tả một thay đổi đã được ghi xuống storage
type Change struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	TodoID string `json:"todoId,omitempty"`
}

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
	ChangeBulk    = "bulk"
)
