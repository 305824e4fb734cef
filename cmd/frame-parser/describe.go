package main

import (
	"encoding/binary"
	"fmt"

	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
)

var commandNames = map[byte]string{
	tcb_protocol.CmdGetDeviceInfo:  "读取设备信息",
	tcb_protocol.CmdSetDeviceInfo:  "设置设备信息",
	tcb_protocol.CmdGetTime:        "读取时间",
	tcb_protocol.CmdSetTime:        "设置时间",
	tcb_protocol.CmdGetRecordInfo:  "读取记录信息",
	tcb_protocol.CmdDownloadRecord: "下载考勤记录",
	tcb_protocol.CmdUploadRecord:   "上传考勤记录",
	tcb_protocol.CmdDownloadStaff:  "下载员工信息",
	tcb_protocol.CmdUploadStaff:    "上传员工信息",
	tcb_protocol.CmdGetDeviceType:  "读取设备类型",
	tcb_protocol.CmdDeleteUser:     "删除用户",
	tcb_protocol.CmdDeleteRecords:  "清除记录",
	tcb_protocol.CmdForcedUnlock:   "强制开锁",
	tcb_protocol.CmdUploadStaffExt: "上传员工信息(扩展)",
	tcb_protocol.CmdGetDeviceID:    "读取设备ID",
	tcb_protocol.CmdSetDeviceID:    "修改设备ID",
}

func commandName(cmd byte) string {
	if name, ok := commandNames[cmd&^tcb_protocol.AckFlag]; ok {
		return name
	}
	return "未知命令"
}

// Describe 逐帧描述数据，应答帧按命令字节最高位识别
func Describe(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		if data[0] != tcb_protocol.STX {
			return append(lines, fmt.Sprintf("❌ 非法起始字节 0x%02X，剩余 %d 字节未解析", data[0], len(data)))
		}
		if len(data) >= tcb_protocol.RequestHeaderLen && data[5]&tcb_protocol.AckFlag != 0 {
			n, line := describeResponse(data)
			lines = append(lines, line)
			if n == 0 {
				return lines
			}
			data = data[n:]
			continue
		}
		n, line := describeRequest(data)
		lines = append(lines, line)
		if n == 0 {
			return lines
		}
		data = data[n:]
	}
	return lines
}

func describeRequest(data []byte) (int, string) {
	if len(data) < tcb_protocol.MinRequestLen {
		return 0, fmt.Sprintf("❌ 请求帧不完整: %d 字节", len(data))
	}
	total := tcb_protocol.RequestHeaderLen + int(binary.BigEndian.Uint16(data[6:8])) + tcb_protocol.ChecksumLen
	if len(data) < total {
		return 0, fmt.Sprintf("❌ 请求帧不完整: 需要 %d 字节，实际 %d 字节", total, len(data))
	}
	req, err := tcb_protocol.DecodeRequest(data[:total])
	if err != nil {
		return total, fmt.Sprintf("❌ 请求帧解析失败: %v", err)
	}
	return total, fmt.Sprintf("➡️  请求 设备ID=0x%08X 命令=0x%02X(%s) 数据(%d)=%X",
		req.DeviceID, req.Command, commandName(req.Command), len(req.Payload), req.Payload)
}

func describeResponse(data []byte) (int, string) {
	if len(data) < tcb_protocol.MinResponseLen {
		return 0, fmt.Sprintf("❌ 应答帧不完整: %d 字节", len(data))
	}
	total := tcb_protocol.ResponseHeaderLen + int(binary.BigEndian.Uint16(data[7:9])) + tcb_protocol.ChecksumLen
	if len(data) < total {
		return 0, fmt.Sprintf("❌ 应答帧不完整: 需要 %d 字节，实际 %d 字节", total, len(data))
	}
	resp, err := tcb_protocol.DecodeResponse(data[:total])
	if err != nil {
		return total, fmt.Sprintf("❌ 应答帧解析失败: %v", err)
	}
	return total, fmt.Sprintf("⬅️  应答 设备ID=0x%08X 命令=0x%02X(%s) 状态=%s 数据(%d)=%X",
		resp.DeviceID, resp.Command|tcb_protocol.AckFlag, commandName(resp.Command), resp.Status, len(resp.Data), resp.Data)
}
