package tcb_protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffEntryLayouts(t *testing.T) {
	entry := StaffEntry{
		UserID:     [5]byte{0x01, 0x02, 0x03, 0x04, 0x05},
		Password:   [3]byte{0xFF, 0xFF, 0xFF},
		CardID:     0x12ABCDEF,
		Name:       [10]byte{'Z', 'h', 'a', 'n', 'g'},
		Department: 3,
		Group:      1,
		Mode:       2,
		FPStatus:   [2]byte{0x00, 0x01},
		Special:    0x09,
	}

	t.Run("27字节格式", func(t *testing.T) {
		data, err := entry.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, StaffEntryLen)
		assert.Equal(t, []byte{0xAB, 0xCD, 0xEF}, data[8:11])
		assert.Equal(t, byte('Z'), data[11])
		assert.Equal(t, byte(3), data[21])
		assert.Equal(t, byte(0x09), data[26])

		var decoded StaffEntry
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, uint32(0xABCDEF), decoded.CardID)
		assert.Equal(t, entry.Name, decoded.Name)
		assert.Equal(t, entry.FPStatus, decoded.FPStatus)
	})

	t.Run("30字节格式", func(t *testing.T) {
		data, err := entry.MarshalExtended()
		require.NoError(t, err)
		require.Len(t, data, StaffEntryExtLen)
		assert.Equal(t, []byte{0x12, 0xAB, 0xCD, 0xEF}, data[8:12])
		assert.Equal(t, byte('Z'), data[12])
		assert.Equal(t, byte(3), data[22])
		assert.Equal(t, byte(0x09), data[27])

		var decoded StaffEntry
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, entry, decoded)
	})

	t.Run("长度错误", func(t *testing.T) {
		var decoded StaffEntry
		assert.Error(t, decoded.UnmarshalBinary(make([]byte, 28)))
	})
}

func TestStaffUploadData(t *testing.T) {
	t.Run("声明条数超过数据长度", func(t *testing.T) {
		upload := &StaffUploadData{}
		data := append([]byte{2}, make([]byte, StaffEntryLen)...)
		assert.Error(t, upload.UnmarshalBinary(data))
	})

	t.Run("扩展格式往返", func(t *testing.T) {
		original := &StaffUploadData{Extended: true, Entries: []StaffEntry{
			{UserID: [5]byte{0, 0, 0, 0, 1}, CardID: 0xFFFFFFFF},
			{UserID: [5]byte{0, 0, 0, 0, 2}, CardID: 42},
		}}
		data, err := original.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, data, 1+2*StaffEntryExtLen)

		decoded := &StaffUploadData{Extended: true}
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, original.Entries, decoded.Entries)
	})
}

func TestRecordEntryLayouts(t *testing.T) {
	entry := RecordEntry{
		UserID:     [5]byte{0, 0, 0, 0x30, 0x39},
		Timestamp:  0x2F1A2B3C,
		BackupCode: 0x08,
		RecordType: 0x80,
		WorkCode:   [3]byte{1, 2, 3},
		DeviceID:   0x00010001,
	}

	download, err := entry.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, download, RecordDownloadEntryLen)
	assert.Equal(t, []byte{0x2F, 0x1A, 0x2B, 0x3C}, download[5:9])
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x01}, download[14:18])

	upload, err := entry.MarshalUpload()
	require.NoError(t, err)
	assert.Equal(t, download[:RecordUploadEntryLen], upload)

	var decoded RecordEntry
	require.NoError(t, decoded.UnmarshalBinary(upload))
	assert.Equal(t, uint32(0), decoded.DeviceID)
	assert.Equal(t, entry.Timestamp, decoded.Timestamp)

	require.NoError(t, decoded.UnmarshalBinary(download))
	assert.Equal(t, entry, decoded)
}

func TestRecordInfoData(t *testing.T) {
	info := &RecordInfoData{UserCount: 3, CardCount: 3, TotalRecords: 500, NewRecords: 0x1000000}
	data, err := info.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, RecordInfoLen)
	assert.Equal(t, []byte{0x00, 0x00, 0x03}, data[0:3])
	assert.Equal(t, []byte{0x00, 0x01, 0xF4}, data[12:15])
	// 超出3字节宽度时饱和
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, data[15:18])
}

func TestUploadResultData(t *testing.T) {
	var result UploadResultData
	result.Set(0)
	result.Set(1)
	result.Set(9)
	result.Set(16)

	data, err := result.MarshalBinary()
	require.NoError(t, err)
	// 低字节在前
	assert.Equal(t, []byte{0x03, 0x02}, data)
	assert.True(t, result.IsSet(9))
	assert.False(t, result.IsSet(16))
}

func TestTimeData(t *testing.T) {
	testCases := []struct {
		name  string
		data  TimeData
		valid bool
	}{
		{name: "正常时间", data: TimeData{25, 6, 1, 12, 30}, valid: true},
		{name: "闰年2月29日", data: TimeData{24, 2, 29, 0, 0}, valid: true},
		{name: "非闰年2月29日", data: TimeData{25, 2, 29, 0, 0}, valid: false},
		{name: "月份为0", data: TimeData{25, 0, 1, 0, 0}, valid: false},
		{name: "小时越界", data: TimeData{25, 1, 1, 24, 0}, valid: false},
		{name: "分钟越界", data: TimeData{25, 1, 1, 0, 60}, valid: false},
		{name: "年份越界", data: TimeData{100, 1, 1, 0, 0}, valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.data.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	now := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	td := NewTimeData(now)
	assert.Equal(t, TimeData{25, 6, 1, 12, 30}, td)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), td.Time(time.UTC))
}

func TestTimestampConversion(t *testing.T) {
	assert.Equal(t, uint32(0), TimestampFromTime(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, uint32(0), TimestampFromTime(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, uint32(86400), TimestampFromTime(time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)))

	ts := TimestampFromTime(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), TimeFromTimestamp(ts, nil))

	// 非UTC时区按墙上时间计算
	cst := time.FixedZone("CST", 8*3600)
	local := time.Date(2025, 1, 1, 10, 0, 0, 0, cst)
	ts = TimestampFromTime(local)
	assert.Equal(t, TimestampFromTime(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)), ts)
	assert.True(t, local.Equal(TimeFromTimestamp(ts, cst)))
	assert.Equal(t, 10, TimeFromTimestamp(ts, nil).Hour())
}
