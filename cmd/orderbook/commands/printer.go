// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package commands

import (
	"fmt"
	"io"
	"time"

	"code.vegaprotocol.io/orderbook/types"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	purple = color.New(color.FgMagenta).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// printer renders orders, trades and depth for a terminal.
type printer struct {
	w io.Writer
}

func (p printer) sideLabel(side types.Side) string {
	if side == types.SideBuy {
		return green("BUY")
	}
	return red("SELL")
}

func (p printer) order(o *types.Order) {
	fmt.Fprintf(p.w, "%s\n", bold("ORDER CREATED:"))
	fmt.Fprintf(p.w, "  ID:        %d\n", o.ID())
	fmt.Fprintf(p.w, "  Type:      %s\n", o.Type())
	fmt.Fprintf(p.w, "  Side:      %s\n", p.sideLabel(o.Side()))
	if o.Price() == types.InvalidPrice {
		fmt.Fprintf(p.w, "  Price:     %s\n", purple("market"))
	} else {
		fmt.Fprintf(p.w, "  Price:     %d\n", o.Price())
	}
	fmt.Fprintf(p.w, "  Quantity:  %s\n\n", humanize.Comma(int64(o.InitialQuantity())))
}

func (p printer) trades(trades types.Trades) {
	if len(trades) == 0 {
		fmt.Fprint(p.w, "No trades executed.\n\n")
		return
	}
	var volume int64
	for _, t := range trades {
		volume += int64(t.Bid.Quantity)
		fmt.Fprintf(p.w, "%s\n", bold("TRADE EXECUTED:"))
		fmt.Fprintf(p.w, "  %s  ID=%d  Price=%d  Qty=%s\n",
			p.sideLabel(types.SideBuy), t.Bid.OrderID, t.Bid.Price, humanize.Comma(int64(t.Bid.Quantity)))
		fmt.Fprintf(p.w, "  %s ID=%d  Price=%d  Qty=%s\n\n",
			p.sideLabel(types.SideSell), t.Ask.OrderID, t.Ask.Price, humanize.Comma(int64(t.Ask.Quantity)))
	}
	fmt.Fprintf(p.w, "%d trade(s), %s lot(s) traded\n\n", len(trades), humanize.Comma(volume))
}

func (p printer) depth(depth types.LevelInfos) {
	fmt.Fprintln(p.w, bold("========= ORDERBOOK DEPTH ========="))
	fmt.Fprintln(p.w, green("--- BIDS (BUY) ---"))
	for _, lvl := range depth.Bids {
		fmt.Fprintf(p.w, "  Price: %8d | Qty: %s\n", lvl.Price, humanize.Comma(int64(lvl.Quantity)))
	}
	fmt.Fprintln(p.w, red("--- ASKS (SELL) ---"))
	for _, lvl := range depth.Asks {
		fmt.Fprintf(p.w, "  Price: %8d | Qty: %s\n", lvl.Price, humanize.Comma(int64(lvl.Quantity)))
	}
	fmt.Fprint(p.w, bold("==================================="), "\n\n")
}

func (p printer) nextPrune(next time.Time) {
	fmt.Fprintf(p.w, "Good for day orders expire %s (%s)\n",
		humanize.Time(next), next.Format(time.RFC1123))
}
