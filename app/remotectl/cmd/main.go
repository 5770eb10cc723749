// remotectl 向 xremote listener 发送一帧请求并打印回显。
//
//	remotectl --type operagx --info instant open
//	remotectl --type os --info delayed "off;30"
//	remotectl --raw "01 01 08 6f"   # 发送截断帧
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lk2023060901/xremote/app/remotectl/internal/command"
	"github.com/lk2023060901/xremote/pkg/app"
	"github.com/lk2023060901/xremote/pkg/tcp"
	"github.com/spf13/pflag"
)

func main() {
	var (
		opts    command.Options
		addr    string
		timeout time.Duration
		pretty  bool
		version bool
	)
	pflag.StringVarP(&addr, "addr", "a", "127.0.0.1:6969", "listener address")
	pflag.StringVarP(&opts.Type, "type", "t", "operagx", "content type: operagx, os or a numeric code")
	pflag.StringVarP(&opts.Info, "info", "i", "instant", "info: instant, delayed or a numeric code")
	pflag.StringVarP(&opts.Payload, "payload", "p", "", "payload text, defaults to the positional arguments joined by ';'")
	pflag.StringVar(&opts.Raw, "raw", "", "hex encoded frame sent as is")
	pflag.DurationVar(&timeout, "timeout", 10*time.Second, "overall request timeout")
	pflag.BoolVar(&pretty, "pretty", true, "indent the JSON echo")
	pflag.BoolVarP(&version, "version", "v", false, "print version and exit")
	pflag.Parse()

	if version {
		fmt.Println(app.GetInfo())
		return
	}
	if opts.Payload == "" && pflag.NArg() > 0 {
		opts.Payload = strings.Join(pflag.Args(), ";")
	}

	if err := run(addr, timeout, pretty, opts); err != nil {
		fmt.Fprintf(os.Stderr, "remotectl: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, timeout time.Duration, pretty bool, opts command.Options) error {
	frame, err := command.BuildFrame(opts)
	if err != nil {
		return err
	}

	conn, err := tcp.NewConnector(&tcp.ClientConfig{Addr: addr, ReadTimeout: timeout})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	body, err := conn.SendRaw(ctx, frame)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		fmt.Fprintln(os.Stderr, "(no echo)")
		return nil
	}
	fmt.Println(command.FormatEcho(body, pretty))
	return nil
}
