package model

import "fmt"

// FlattenMap assistant动作等处使用的宽松JSON对象。
type FlattenMap map[string]interface{}

func (f FlattenMap) Filter(fields ...string) FlattenMap {
	var newMap = make(map[string]interface{})
	for _, field := range fields {
		if val, ok := f[field]; ok {
			newMap[field] = val
		}
	}
	return newMap
}

func (f FlattenMap) Merge(a map[string]interface{}) FlattenMap {
	for k, v := range a {
		f[k] = v
	}
	return f
}

func (f FlattenMap) Exclude(fields ...string) FlattenMap {
	hash := make(map[string]interface{})
	for _, v := range fields {
		hash[v] = 1
	}
	for k := range f {
		if _, ok := hash[k]; ok {
			delete(f, k)
		}
	}
	return f
}

// GetString 宽松取字符串值，缺失或类型不符返回空串。
func (f FlattenMap) GetString(field string) string {
	val, ok := f[field]
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}

// GetStringSlice 宽松取字符串数组，[]interface{} 与 []string 均接受。
func (f FlattenMap) GetStringSlice(field string) []string {
	val, ok := f[field]
	if !ok {
		return nil
	}
	switch vs := val.(type) {
	case []string:
		return vs
	case []interface{}:
		res := make([]string, 0, len(vs))
		for _, v := range vs {
			if s, ok := v.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}

// MakeFlattenMap parse kv pair from kvs,panic if not in pair
func MakeFlattenMap(kvs ...interface{}) FlattenMap {
	res := make(map[string]interface{})
	if len(kvs)%2 == 1 {
		panic("key/val should in pair")
	}
	for index, val := range kvs {
		// skip value
		if index%2 == 1 {
			continue
		}
		// res[key]=value
		key, ok := val.(string)
		if !ok {
			panic(fmt.Sprintf("error cover %v to string", key))
		}
		res[key] = kvs[index+1]
	}
	return res
}
