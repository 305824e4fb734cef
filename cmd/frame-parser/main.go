package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	var (
		interactive = flag.Bool("i", false, "进入交互模式")
		hexData     = flag.String("hex", "", "要解析的十六进制数据")
	)
	flag.Parse()

	if *interactive {
		runInteractiveMode()
	} else if *hexData != "" {
		parse(*hexData)
	} else {
		fmt.Println("TC-B协议帧解析工具")
		fmt.Println("用法:")
		fmt.Println("  frame-parser -hex <十六进制数据>  - 解析指定的请求或应答帧")
		fmt.Println("  frame-parser -i                 - 进入交互模式")
		fmt.Println("\n示例:")
		fmt.Println("  frame-parser -hex A5FFFFFFFF3800009495")
	}
}

// runInteractiveMode 运行交互模式
func runInteractiveMode() {
	fmt.Println("TC-B协议帧解析工具 - 交互模式")
	fmt.Println("输入十六进制数据进行解析，输入 'exit' 或 'quit' 退出")
	fmt.Println("----------------------------------------")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "exit" || input == "quit" {
			break
		}
		if input == "" {
			continue
		}
		parse(input)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "读取输入失败: %v\n", err)
	}
}

// parse 解析一段十六进制数据中的全部帧
func parse(input string) {
	data, err := hex.DecodeString(strings.ReplaceAll(input, " ", ""))
	if err != nil {
		fmt.Printf("❌ 十六进制格式错误: %v\n", err)
		return
	}
	for _, line := range Describe(data) {
		fmt.Println(line)
	}
}
