package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/client"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:5010", "终端地址")
		deviceID = flag.String("device", "0xFFFFFFFF", "请求帧中的设备ID")
		timeout  = flag.Duration("timeout", client.DefaultTimeout, "单次请求超时")
		param    = flag.Uint("param", 1, "下载参数: 0继续 1从头 2新记录")
		count    = flag.Uint("count", 10, "下载条数")
		code     = flag.String("code", "", "raw命令的命令码，如0x30")
		payload  = flag.String("hex", "", "raw命令的数据部分(十六进制)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	id, err := strconv.ParseUint(*deviceID, 0, 32)
	if err != nil {
		fatalf("设备ID无效: %v", err)
	}

	c, err := client.Dial(*addr, uint32(id), *timeout)
	if err != nil {
		fatalf("连接失败: %v", err)
	}
	defer c.Close()

	switch cmd := flag.Arg(0); cmd {
	case "info":
		info, err := c.GetDeviceInfo()
		check(err)
		cfg := storage.BasicConfig{Firmware: info.Firmware, Language: info.Language, DateFormat: info.DateFormat}
		fmt.Printf("固件: %s\n", cfg.FirmwareString())
		fmt.Printf("音量: %d  休眠: %d  语言: %s\n", info.Volume, info.SleepTime, cfg.LanguageName())
		fmt.Printf("日期格式: %s  命令集版本: %d\n", cfg.DateFormatDescription(), info.CmdVersion)
	case "time":
		t, err := c.GetTime()
		check(err)
		fmt.Println(t.Time(time.Local).Format("2006-01-02 15:04"))
	case "settime":
		check(c.SetTime(time.Now()))
		fmt.Println("已同步为本机时间")
	case "recinfo":
		info, err := c.GetRecordInfo()
		check(err)
		fmt.Printf("用户: %d  卡: %d  密码: %d  指纹: %d\n", info.UserCount, info.CardCount, info.PasswordCount, info.FingerprintCount)
		fmt.Printf("记录: %d  新记录: %d\n", info.TotalRecords, info.NewRecords)
	case "records":
		entries, err := c.DownloadRecords(uint8(*param), uint8(*count))
		check(err)
		for _, e := range entries {
			r := storage.AccessRecord{BackupCode: e.BackupCode, RecordType: e.RecordType}
			fmt.Printf("%s  %-14s %-4s %s\n",
				tcb_protocol.TimeFromTimestamp(e.Timestamp, time.Local).Format("2006-01-02 15:04:05"),
				storage.FormatUserID(e.UserID), r.Direction(), r.Method())
		}
		fmt.Printf("共 %d 条\n", len(entries))
	case "staff":
		entries, err := c.DownloadStaff(uint8(*param), uint8(*count))
		check(err)
		for _, e := range entries {
			u := storage.User{Name: e.Name}
			fmt.Printf("%-14s %-10s 卡号:%d 部门:%d\n", storage.FormatUserID(e.UserID), u.DisplayName(), e.CardID, e.Department)
		}
		fmt.Printf("共 %d 条\n", len(entries))
	case "unlock":
		check(c.Unlock())
		fmt.Println("已开锁")
	case "clear-records":
		check(c.DeleteRecords(1))
		fmt.Println("已清空记录")
	case "clear-new":
		check(c.DeleteRecords(2))
		fmt.Println("已清除新记录标记")
	case "devid":
		id, err := c.GetDeviceID()
		check(err)
		fmt.Printf("0x%08X\n", id)
	case "raw":
		runRaw(c, *code, *payload)
	default:
		fmt.Fprintf(os.Stderr, "未知命令: %s\n", cmd)
		usage()
		os.Exit(2)
	}
}

// runRaw 发送任意命令并打印应答
func runRaw(c *client.Client, code, payload string) {
	cmd, err := strconv.ParseUint(code, 0, 8)
	if err != nil {
		fatalf("命令码无效: %v", err)
	}
	data, err := hex.DecodeString(strings.ReplaceAll(payload, " ", ""))
	if err != nil {
		fatalf("数据格式错误: %v", err)
	}
	if !tcb_protocol.IsKnownCommand(byte(cmd)) {
		fmt.Fprintf(os.Stderr, "注意: 0x%02X 不是协议定义的命令，终端将返回失败\n", cmd)
	}
	resp, err := c.Call(byte(cmd), data)
	check(err)
	fmt.Printf("设备ID: 0x%08X\n", resp.DeviceID)
	fmt.Printf("命令: 0x%02X  状态: %s\n", resp.Command|tcb_protocol.AckFlag, resp.Status)
	fmt.Printf("数据(%d): %X\n", len(resp.Data), resp.Data)
}

func usage() {
	fmt.Fprintln(os.Stderr, "门禁终端客户端")
	fmt.Fprintln(os.Stderr, "用法: terminal-client [选项] <命令>  (选项必须在命令之前)")
	fmt.Fprintln(os.Stderr, "\n命令:")
	fmt.Fprintln(os.Stderr, "  info | time | settime | recinfo | records | staff | unlock | clear-records | clear-new | devid | raw")
	fmt.Fprintln(os.Stderr, "\n示例:")
	fmt.Fprintln(os.Stderr, "  terminal-client -addr 192.168.1.50:5010 -param 2 -count 25 records")
	fmt.Fprintln(os.Stderr, "  terminal-client -code 0x4E -hex 02 raw")
	fmt.Fprintln(os.Stderr, "\n选项:")
	flag.PrintDefaults()
}

func check(err error) {
	if err != nil {
		fatalf("请求失败: %v", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
