package builtins

import (
	"math"
	"strings"
	"time"

	"github.com/example/evaljs/runtime"
)

// now is the clock behind Date.now and new Date().
var now = time.Now

const maxTimeValue = 8.64e15

func createDateConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)

	setMethod(proto, "getTime", 0, dateGetTime)
	setMethod(proto, "valueOf", 0, dateGetTime)
	setMethod(proto, "setTime", 1, dateSetTime)
	setMethod(proto, "getTimezoneOffset", 0, dateGetTimezoneOffset)
	for _, f := range dateFields {
		setMethod(proto, "get"+f.name, 0, dateGetter(f.get, time.Local))
		setMethod(proto, "getUTC"+f.name, 0, dateGetter(f.get, time.UTC))
	}
	setMethod(proto, "toISOString", 0, dateToISOString)
	setMethod(proto, "toJSON", 1, dateToJSON)
	setMethod(proto, "toString", 0, dateFormatter("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)", time.Local))
	setMethod(proto, "toDateString", 0, dateFormatter("Mon Jan 02 2006", time.Local))
	setMethod(proto, "toTimeString", 0, dateFormatter("15:04:05 GMT-0700 (MST)", time.Local))
	setMethod(proto, "toUTCString", 0, dateFormatter("Mon, 02 Jan 2006 15:04:05 GMT", time.UTC))
	setMethod(proto, "toLocaleString", 0, dateFormatter("1/2/2006, 3:04:05 PM", time.Local))

	call := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewString(now().Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")), nil
	}
	ctor := newConstructor("Date", 7, proto, call, func(args []*runtime.Value) (*runtime.Value, error) {
		ms, err := dateArgs(args)
		if err != nil {
			return nil, err
		}
		obj := runtime.NewOrdinaryObject(proto)
		obj.OType = runtime.ObjTypeDate
		obj.Internal = map[string]interface{}{"time": timeClip(ms)}
		return runtime.NewObject(obj), nil
	})
	setMethod(ctor, "now", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewNumber(float64(now().UnixMilli())), nil
	})
	setMethod(ctor, "parse", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		s, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(parseDate(s)), nil
	})
	setMethod(ctor, "UTC", 7, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		ms, err := componentsToTime(args, time.UTC)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(timeClip(ms)), nil
	})
	return ctor
}

var dateFields = []struct {
	name string
	get  func(t time.Time) int
}{
	{"FullYear", func(t time.Time) int { return t.Year() }},
	{"Month", func(t time.Time) int { return int(t.Month()) - 1 }},
	{"Date", func(t time.Time) int { return t.Day() }},
	{"Day", func(t time.Time) int { return int(t.Weekday()) }},
	{"Hours", func(t time.Time) int { return t.Hour() }},
	{"Minutes", func(t time.Time) int { return t.Minute() }},
	{"Seconds", func(t time.Time) int { return t.Second() }},
	{"Milliseconds", func(t time.Time) int { return t.Nanosecond() / 1e6 }},
}

func timeClip(ms float64) float64 {
	if math.IsNaN(ms) || math.Abs(ms) > maxTimeValue {
		return math.NaN()
	}
	return math.Trunc(ms) + 0
}

func dateArgs(args []*runtime.Value) (float64, error) {
	switch len(args) {
	case 0:
		return float64(now().UnixMilli()), nil
	case 1:
		if d, ok := dateValue(args[0]); ok {
			return d, nil
		}
		prim, err := runtime.ToPrimitive(args[0], runtime.HintDefault)
		if err != nil {
			return 0, err
		}
		if prim.Type == runtime.TypeString {
			return parseDate(prim.Str), nil
		}
		return runtime.ToNumber(prim)
	}
	return componentsToTime(args, time.Local)
}

// componentsToTime converts (year, month[, day, h, m, s, ms]) into a time value.
func componentsToTime(args []*runtime.Value, loc *time.Location) (float64, error) {
	parts := []float64{math.NaN(), 0, 1, 0, 0, 0, 0}
	for i := 0; i < len(args) && i < len(parts); i++ {
		n, err := runtime.ToNumber(args[i])
		if err != nil {
			return 0, err
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return math.NaN(), nil
		}
		parts[i] = math.Trunc(n)
	}
	if math.IsNaN(parts[0]) {
		return math.NaN(), nil
	}
	if parts[0] >= 0 && parts[0] <= 99 {
		parts[0] += 1900
	}
	t := time.Date(int(parts[0]), time.Month(int(parts[1])+1), int(parts[2]),
		int(parts[3]), int(parts[4]), int(parts[5]), 0, loc)
	return float64(t.UnixMilli()) + parts[6], nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	time.RFC1123,
	time.RFC1123Z,
	"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"Mon Jan 02 2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// parseDate accepts ISO dates plus the formats Date itself produces.
// Date-only ISO forms are UTC; other forms without an offset are local.
func parseDate(s string) float64 {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return float64(t.UnixMilli())
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli())
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return math.NaN()
}

func dateValue(v *runtime.Value) (float64, bool) {
	obj := toObject(v)
	if obj == nil || obj.OType != runtime.ObjTypeDate {
		return 0, false
	}
	ms, ok := obj.Internal["time"].(float64)
	return ms, ok
}

func thisDate(this *runtime.Value) (float64, error) {
	ms, ok := dateValue(this)
	if !ok {
		return 0, typeErrorf("this is not a Date object.")
	}
	return ms, nil
}

func toTime(ms float64, loc *time.Location) time.Time {
	return time.UnixMilli(int64(ms)).In(loc)
}

func dateGetTime(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ms, err := thisDate(this)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(ms), nil
}

func dateSetTime(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if _, err := thisDate(this); err != nil {
		return nil, err
	}
	n, err := runtime.ToNumber(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	ms := timeClip(n)
	this.Object.Internal["time"] = ms
	return runtime.NewNumber(ms), nil
}

func dateGetTimezoneOffset(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ms, err := thisDate(this)
	if err != nil || math.IsNaN(ms) {
		return runtime.NaN, err
	}
	_, offset := toTime(ms, time.Local).Zone()
	return runtime.NewNumber(float64(-offset / 60)), nil
}

func dateGetter(get func(time.Time) int, loc *time.Location) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		ms, err := thisDate(this)
		if err != nil || math.IsNaN(ms) {
			return runtime.NaN, err
		}
		return runtime.NewNumber(float64(get(toTime(ms, loc)))), nil
	}
}

func dateFormatter(layout string, loc *time.Location) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		ms, err := thisDate(this)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(ms) {
			return runtime.NewString("Invalid Date"), nil
		}
		return runtime.NewString(toTime(ms, loc).Format(layout)), nil
	}
}

func dateToISOString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ms, err := thisDate(this)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(ms) {
		return nil, rangeErrorf("Invalid time value")
	}
	return runtime.NewString(toTime(ms, time.UTC).Format("2006-01-02T15:04:05.000Z")), nil
}

func dateToJSON(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if ms, ok := dateValue(this); ok && math.IsNaN(ms) {
		return runtime.Null, nil
	}
	return dateToISOString(this, args)
}
