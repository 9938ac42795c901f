package notify

import "net"

const fallbackIP = "127.0.0.1"

// LocalIP returns the address of the interface used for outbound traffic.
// The UDP dial sends no packets, so the target need not be reachable.
func LocalIP() string {
	conn, err := net.Dial("udp", "10.255.255.255:1")
	if err != nil {
		return fallbackIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return fallbackIP
	}
	return addr.IP.String()
}
