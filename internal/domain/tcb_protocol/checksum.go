package tcb_protocol

// CRC16参数：CCITT反射多项式，初值0xFFFF，无结果异或
const (
	crc16Polynomial   uint16 = 0x8408
	crc16InitialValue uint16 = 0xFFFF
)

var crc16Table [256]uint16

func init() {
	for i := range crc16Table {
		crc := uint16(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crc16Polynomial
			} else {
				crc >>= 1
			}
		}
		crc16Table[i] = crc
	}
}

// Checksum 计算帧校验值
// 结果的高低字节互换后按大端写入线路，即寄存器低字节在前
func Checksum(data []byte) uint16 {
	crc := crc16InitialValue
	for _, b := range data {
		crc = (crc >> 8) ^ crc16Table[byte(crc)^b]
	}
	return crc<<8 | crc>>8
}

// VerifyChecksum 校验完整帧末尾的两个校验字节
func VerifyChecksum(frame []byte) bool {
	if len(frame) < ChecksumLen {
		return false
	}
	n := len(frame) - ChecksumLen
	received := uint16(frame[n])<<8 | uint16(frame[n+1])
	return received == Checksum(frame[:n])
}

// appendChecksum 计算并追加校验字节
func appendChecksum(frame []byte) []byte {
	crc := Checksum(frame)
	return append(frame, byte(crc>>8), byte(crc))
}
