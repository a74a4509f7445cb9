package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
}

// force timezone to be IST because the portal's dates and the cache
// timestamps are campus-local, while servers/CI may run anywhere
func Now() time.Time {
	return time.Now().In(Location)
}

// StampLayout is the display layout every cache write stamps its
// created_at with. Short weekday/month, no comma. The mobile UI reads
// this string verbatim so it must not change.
const StampLayout = "Mon Jan 02 2006 15:04:05"

func FormatStamp(t time.Time) string {
	return t.In(Location).Format(StampLayout)
}
