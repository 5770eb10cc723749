package config

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// MergeConfig 将 src 中的非零值覆盖到 dst 上并返回 dst
//   - dst 与 src 都为 nil 时报错
//   - 任一为 nil 时返回另一个
//
// 零值视为"未设置"，因此 bool 字段无法通过 src 从 true 改为 false；
// 默认开启的开关应声明为 *bool，非 nil 的标量指针会整体覆盖 dst。
func MergeConfig[T any](dst, src *T) (*T, error) {
	if dst == nil && src == nil {
		return nil, errors.Wrap(ErrMergeFailed, "both dst and src are nil")
	}
	if dst == nil {
		return src, nil
	}
	if src == nil {
		return dst, nil
	}

	if err := mergeValues(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()); err != nil {
		return nil, errors.Wrapf(ErrMergeFailed, "%v", err)
	}
	return dst, nil
}

func mergeValues(dst, src reflect.Value) error {
	if !src.IsValid() || src.IsZero() {
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		return mergeStruct(dst, src)
	case reflect.Map:
		return mergeMap(dst, src)
	case reflect.Ptr:
		return mergePointer(dst, src)
	default:
		// 基本类型、切片直接覆盖
		if dst.CanSet() {
			dst.Set(src)
		}
		return nil
	}
}

func mergeStruct(dst, src reflect.Value) error {
	srcType := src.Type()
	for i := 0; i < src.NumField(); i++ {
		field := srcType.Field(i)
		if !field.IsExported() {
			continue
		}

		dstField := dst.FieldByName(field.Name)
		if !dstField.IsValid() || !dstField.CanSet() {
			continue
		}

		if err := mergeValues(dstField, src.Field(i)); err != nil {
			return errors.Wrapf(err, "field %s", field.Name)
		}
	}
	return nil
}

func mergeMap(dst, src reflect.Value) error {
	if dst.IsNil() {
		dst.Set(reflect.MakeMap(dst.Type()))
	}

	iter := src.MapRange()
	for iter.Next() {
		key := iter.Key()
		existing := dst.MapIndex(key)
		if !existing.IsValid() {
			dst.SetMapIndex(key, iter.Value())
			continue
		}

		merged := reflect.New(dst.Type().Elem()).Elem()
		merged.Set(existing)
		if err := mergeValues(merged, iter.Value()); err != nil {
			return errors.Wrapf(err, "map key %v", key.Interface())
		}
		dst.SetMapIndex(key, merged)
	}
	return nil
}

func mergePointer(dst, src reflect.Value) error {
	if src.Elem().Kind() != reflect.Struct {
		dst.Set(src)
		return nil
	}
	if dst.IsNil() {
		dst.Set(reflect.New(dst.Type().Elem()))
	}
	return mergeValues(dst.Elem(), src.Elem())
}

// Bool 返回 v 的指针，用于默认开启的开关
func Bool(v bool) *bool {
	return &v
}

// BoolValue 解引用开关，未设置时返回 def
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
