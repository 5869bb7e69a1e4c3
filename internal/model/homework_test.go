package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestDecodeRecurrence(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Recurrence
	}{
		{"数组", `["1","3","5"]`, Recurrence{"1", "3", "5"}},
		{"旧标量字符串", `"3"`, Recurrence{"3"}},
		{"旧标量数字", `4`, Recurrence{"4"}},
		{"每天", `"everyday"`, Recurrence{Everyday}},
		{"数字数组", `[0,6]`, Recurrence{"0", "6"}},
		{"去重排序", `["5","1","5"]`, Recurrence{"1", "5"}},
		{"丢弃非法", `["9","x","2"]`, Recurrence{"2"}},
		{"null", `null`, Recurrence{}},
		{"空", ``, Recurrence{}},
		{"对象", `{"a":1}`, Recurrence{}},
		{"everyday 排在最后", `["everyday","2"]`, Recurrence{"2", Everyday}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeRecurrence(json.RawMessage(tc.raw))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("期望 %v，实际 %v", tc.want, got)
			}
		})
	}
}

func TestDayToken_Valid(t *testing.T) {
	for _, tok := range []DayToken{"0", "6", Everyday} {
		if !tok.Valid() {
			t.Errorf("%q 应合法", tok)
		}
	}
	for _, tok := range []DayToken{"7", "-1", "", "01", "Mon"} {
		if tok.Valid() {
			t.Errorf("%q 不应合法", tok)
		}
	}
}

func TestDayToken_Weekday(t *testing.T) {
	if w, ok := DayToken("0").Weekday(); !ok || w != time.Sunday {
		t.Errorf("\"0\" 应为周日，实际 %v %v", w, ok)
	}
	if _, ok := Everyday.Weekday(); ok {
		t.Error("everyday 不对应具体星期")
	}
	if WeekdayToken(time.Saturday) != "6" {
		t.Error("周六应为 \"6\"")
	}
}

func TestTenant_Key(t *testing.T) {
	tn := Tenant{Grade: "1年", ClassID: "い組"}
	if got := tn.Key(CollectionSubmissions); got != "school_homework_submissions_1年_い組" {
		t.Errorf("键不符: %s", got)
	}
}

func TestTenants_Order(t *testing.T) {
	got := Tenants([]string{"1年", "2年"}, []string{"い組", "ろ組"})
	want := []Tenant{
		{"1年", "い組"}, {"1年", "ろ組"},
		{"2年", "い組"}, {"2年", "ろ組"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("租户顺序不符: %v", got)
	}
}
