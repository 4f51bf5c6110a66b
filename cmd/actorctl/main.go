// Command actorctl is a small cobra-based CLI that exercises the actor
// runtime end to end: a ping/pong request and a supervised-worker demo,
// per SPEC_FULL.md §A.5.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/markInTheAbyss/go-actor/actor"
	"github.com/markInTheAbyss/go-actor/actor/config"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use: "actorctl",
		Short: "Exercise the actor runtime from the command line",
	}
	config.BindFlags(root.PersistentFlags())
	bindViper(v, root.PersistentFlags())

	root.AddCommand(newPingPongCmd(v))
	root.AddCommand(newSupervisorCmd(v))
	return root
}

func bindViper(v *viper.Viper, fs *pflag.FlagSet) {
	v.SetEnvPrefix("ACTORCTL")
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)
}

func buildRuntime(v *viper.Viper, name string) (*actor.Runtime, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	rc, err := cfg.RuntimeConfig(name)
	if err != nil {
		return nil, err
	}
	return actor.NewRuntime(rc), nil
}

func newPingPongCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use: "ping-pong",
		Short: "Spawn a ping/pong pair and report how they terminate",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(v, "ping-pong")
			if err != nil {
				return err
			}
			defer rt.Stop()

			done := make(chan string, 2)

			pong := rt.Spawn(func(ctx *actor.ActorContext) *actor.Behavior {
				return actor.NewBehavior(
					actor.On(actor.TypedValue("ping")).Do(rt, func(ctx *actor.ActorContext, _ actor.Mapping, _ *actor.Tuple) (*actor.Tuple, error) {
						ctx.Quit(actor.ExitNormal)
						return ctx.NewTuple("pong"), nil
					}),
				)
			})

			rt.Spawn(func(ctx *actor.ActorContext) *actor.Behavior {
				req, err := ctx.Request(pong, "ping")
				if err != nil {
					done <- fmt.Sprintf("request failed: %v", err)
					ctx.Quit(actor.ExitUnhandledSyncFailure)
					return nil
				}
				b := actor.NewBehavior(
					actor.On(actor.TypedValue("pong")).Do(rt, func(ctx *actor.ActorContext, _ actor.Mapping, _ *actor.Tuple) (*actor.Tuple, error) {
						done <- "pong received, pending=" + fmt.Sprint(ctx.Pending())
						ctx.Quit(actor.ExitNormal)
						return nil, nil
					}),
				)
				req.Await(b)
				return b
			})

			select {
			case msg := <-done:
				fmt.Println(msg)
			case <-time.After(5 * time.Second):
				fmt.Println("timed out waiting for pong")
			}
			return nil
		},
	}
}

func newSupervisorCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use: "supervise",
		Short: "Link a worker to a supervisor and crash it on purpose",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(v, "supervise")
			if err != nil {
				return err
			}
			defer rt.Stop()

			done := make(chan actor.ExitReason, 1)

			worker := rt.Spawn(func(ctx *actor.ActorContext) *actor.Behavior {
				return actor.NewBehavior(
					actor.On(actor.TypedValue("crash")).Do(rt, func(ctx *actor.ActorContext, _ actor.Mapping, _ *actor.Tuple) (*actor.Tuple, error) {
						ctx.Quit(actor.ExitReason(42))
						return nil, nil
					}),
				)
			})

			rt.Spawn(func(ctx *actor.ActorContext) *actor.Behavior {
				ctx.TrapExit(true)
				ctx.Link(worker)
				actor.Send(worker, "crash")
				return actor.NewBehavior(
					actor.On(actor.Typed[actor.EXIT]()).Do(rt, func(_ *actor.ActorContext, _ actor.Mapping, msg *actor.Tuple) (*actor.Tuple, error) {
						exit := msg.ElementAt(0).(actor.EXIT)
						done <- exit.Reason
						return nil, nil
					}),
				)
			})

			select {
			case reason := <-done:
				fmt.Printf("supervisor observed worker exit reason=%d\n", reason)
			case <-time.After(5 * time.Second):
				fmt.Println("timed out waiting for worker exit")
			}
			return nil
		},
	}
}
